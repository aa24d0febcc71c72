package bus

import (
	"testing"
)

func TestNewStereoConfiguration(t *testing.T) {
	config := NewStereoConfiguration()

	if got := config.GetBusCount(DirectionInput); got != 1 {
		t.Errorf("Expected 1 input bus, got %d", got)
	}
	if got := config.GetBusCount(DirectionOutput); got != 1 {
		t.Errorf("Expected 1 output bus, got %d", got)
	}

	inBus := config.GetBusInfo(DirectionInput, 0)
	if inBus == nil {
		t.Fatal("Expected input bus to exist")
	}
	if inBus.ChannelCount != 2 {
		t.Errorf("Expected 2 input channels, got %d", inBus.ChannelCount)
	}
	if inBus.Name != "Stereo In" {
		t.Errorf("Expected input name 'Stereo In', got %s", inBus.Name)
	}

	if got := config.ChannelCount(DirectionOutput); got != 2 {
		t.Errorf("Expected 2 output channels, got %d", got)
	}
	if config.GetBusInfo(DirectionOutput, 1) != nil {
		t.Error("Expected no second output bus")
	}
}

func TestNewMonoConfiguration(t *testing.T) {
	config := NewMonoConfiguration()

	if got := config.ChannelCount(DirectionInput); got != 1 {
		t.Errorf("Expected 1 input channel, got %d", got)
	}
	if got := config.GetBusInfo(DirectionOutput, 0).Name; got != "Mono Out" {
		t.Errorf("Expected 'Mono Out', got %s", got)
	}
}

func TestConfigurationActivation(t *testing.T) {
	config := NewStereoConfiguration().Add(DirectionInput, "Return", 2)

	if got := config.ChannelCount(DirectionInput); got != 4 {
		t.Errorf("Expected 4 input channels, got %d", got)
	}

	if !config.SetActive(DirectionInput, 1, false) {
		t.Fatal("SetActive failed for existing bus")
	}
	if got := config.ChannelCount(DirectionInput); got != 2 {
		t.Errorf("Expected 2 active input channels, got %d", got)
	}
	if config.SetActive(DirectionOutput, 3, false) {
		t.Error("SetActive should fail for missing bus")
	}
}

func TestDirectionString(t *testing.T) {
	if DirectionInput.String() != "in" || DirectionOutput.String() != "out" {
		t.Errorf("Unexpected names %s/%s", DirectionInput, DirectionOutput)
	}
}
