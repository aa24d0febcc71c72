//go:build !jack

package host

import (
	"errors"

	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
)

// ErrJackDisabled is returned by every JackClient operation in builds
// without the jack tag.
var ErrJackDisabled = errors.New("JACK support not enabled - rebuild with '-tags jack' and ensure JACK development headers are installed")

// JackClient stub for builds without JACK support
type JackClient struct{}

// NewJackClient returns ErrJackDisabled.
func NewJackClient(proc plugin.Processor, clientName string) (*JackClient, error) {
	return nil, ErrJackDisabled
}

// SampleRate returns 0.
func (jc *JackClient) SampleRate() uint32 { return 0 }

// Start returns ErrJackDisabled.
func (jc *JackClient) Start() error { return ErrJackDisabled }

// Stop returns ErrJackDisabled.
func (jc *JackClient) Stop() error { return ErrJackDisabled }

// Close returns ErrJackDisabled.
func (jc *JackClient) Close() error { return ErrJackDisabled }
