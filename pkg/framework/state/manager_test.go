package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/loopdrift/loopdrift/pkg/framework/param"
)

func newRegistry(t *testing.T) *param.Registry {
	t.Helper()
	r := param.NewRegistry()
	if err := r.Add(
		param.GainParameter(0, "Gain", -30, 30).Build(),
		param.IntegerParameter(1, "Delay", 1, 1000, 1).Build(),
		param.IntegerParameter(2, "Mode", 1, 7, 1).Build(),
	); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestManagerRoundTrip(t *testing.T) {
	src := newRegistry(t)
	src.Get(0).SetPlainValue(-12)
	src.Get(1).SetPlainValue(640)
	src.Get(2).SetPlainValue(5)

	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(Magic)) {
		t.Errorf("Missing header in % x", buf.Bytes()[:8])
	}
	if want := len(Magic) + 4 + 4 + 3*12; buf.Len() != want {
		t.Errorf("Expected %d bytes, got %d", want, buf.Len())
	}

	dst := newRegistry(t)
	if err := NewManager(dst).Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, id := range []uint32{0, 1, 2} {
		if got, want := dst.Get(id).GetPlainValue(), src.Get(id).GetPlainValue(); got != want {
			t.Errorf("Parameter %d: expected %f, got %f", id, want, got)
		}
	}
}

func TestManagerLoadErrors(t *testing.T) {
	t.Run("BadHeader", func(t *testing.T) {
		err := NewManager(newRegistry(t)).Load(bytes.NewReader([]byte("XDRIFT\x01\x00\x00\x00")))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("NewerVersion", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(Magic)
		binary.Write(&buf, binary.LittleEndian, Version+1)
		binary.Write(&buf, binary.LittleEndian, int32(0))

		if err := NewManager(newRegistry(t)).Load(&buf); err == nil {
			t.Error("Expected version error")
		}
	})

	t.Run("TruncatedLeavesValues", func(t *testing.T) {
		src := newRegistry(t)
		src.Get(1).SetPlainValue(900)
		var buf bytes.Buffer
		if err := NewManager(src).Save(&buf); err != nil {
			t.Fatal(err)
		}

		dst := newRegistry(t)
		truncated := buf.Bytes()[:buf.Len()-4]
		if err := NewManager(dst).Load(bytes.NewReader(truncated)); err == nil {
			t.Fatal("Expected error for truncated state")
		}
		if dst.Get(1).GetPlainValue() != 1 {
			t.Errorf("Truncated load changed delay to %f", dst.Get(1).GetPlainValue())
		}
	})

	t.Run("UnknownIDSkipped", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(Magic)
		binary.Write(&buf, binary.LittleEndian, Version)
		binary.Write(&buf, binary.LittleEndian, int32(2))
		binary.Write(&buf, binary.LittleEndian, uint32(42))
		binary.Write(&buf, binary.LittleEndian, 0.5)
		binary.Write(&buf, binary.LittleEndian, uint32(2))
		binary.Write(&buf, binary.LittleEndian, 1.0)

		r := newRegistry(t)
		if err := NewManager(r).Load(&buf); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if r.Get(2).GetPlainValue() != 7 {
			t.Errorf("Expected mode 7, got %f", r.Get(2).GetPlainValue())
		}
	})
}
