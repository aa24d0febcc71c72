//go:build jack

package host

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
	"github.com/xthexder/go-jack"
)

var jackDebug = debuggo.Debug("loopdrift:jack")

// JackClient runs a processor as a JACK client with a stereo input and a
// stereo output port pair.
type JackClient struct {
	client     *jack.Client
	runner     *periodRunner
	in         [2]*jack.Port
	out        [2]*jack.Port
	sampleRate uint32
	bufferSize uint32
}

// NewJackClient opens a client and registers its ports. The JACK server
// must already be running.
func NewJackClient(proc plugin.Processor, clientName string) (*JackClient, error) {
	jackDebug("opening JACK client %s", clientName)

	client, code := jack.ClientOpen(clientName, jack.NoStartServer)
	if client == nil || code != 0 {
		return nil, fmt.Errorf("open JACK client: %w", jack.StrError(code))
	}

	jc := &JackClient{
		client:     client,
		sampleRate: client.GetSampleRate(),
		bufferSize: client.GetBufferSize(),
	}

	names := [2]string{"left", "right"}
	for ch, name := range names {
		jc.in[ch] = client.PortRegister("in_"+name, jack.DEFAULT_AUDIO_TYPE, jack.PortIsInput, 0)
		jc.out[ch] = client.PortRegister("out_"+name, jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
		if jc.in[ch] == nil || jc.out[ch] == nil {
			client.Close()
			return nil, fmt.Errorf("register JACK %s ports", name)
		}
	}

	if err := proc.Initialize(float64(jc.sampleRate), int32(jc.bufferSize)); err != nil {
		client.Close()
		return nil, fmt.Errorf("initialize processor: %w", err)
	}
	jc.runner = newPeriodRunner(proc, float64(jc.sampleRate), int(jc.bufferSize))

	if code := client.SetProcessCallback(jc.processCallback); code != 0 {
		client.Close()
		return nil, fmt.Errorf("set process callback: %w", jack.StrError(code))
	}

	jackDebug("JACK client ready (sample rate: %d Hz, buffer size: %d)", jc.sampleRate, jc.bufferSize)
	return jc, nil
}

// SampleRate returns the server sample rate.
func (jc *JackClient) SampleRate() uint32 {
	return jc.sampleRate
}

// Start activates the processor and the client.
func (jc *JackClient) Start() error {
	if err := jc.runner.start(); err != nil {
		return err
	}
	if code := jc.client.Activate(); code != 0 {
		return fmt.Errorf("activate JACK client: %w", jack.StrError(code))
	}
	jackDebug("JACK client activated")
	return nil
}

// Stop silences the ports and deactivates the processor, clearing its
// history. The client stays connected until Close.
func (jc *JackClient) Stop() error {
	if err := jc.runner.stop(); err != nil {
		return fmt.Errorf("deactivate processor: %w", err)
	}
	jackDebug("JACK client stopped")
	return nil
}

// Close closes the connection to the server.
func (jc *JackClient) Close() error {
	if code := jc.client.Close(); code != 0 {
		return fmt.Errorf("close JACK client: %w", jack.StrError(code))
	}
	jackDebug("JACK client closed")
	return nil
}

// processCallback runs on the JACK thread.
func (jc *JackClient) processCallback(nframes uint32) int {
	var in, out [2][]jack.AudioSample
	for ch := 0; ch < 2; ch++ {
		in[ch] = jc.in[ch].GetBuffer(nframes)
		out[ch] = jc.out[ch].GetBuffer(nframes)
	}
	runPeriod(jc.runner, in, out)
	return 0
}
