// Package bus describes the audio channel layout of a processor.
package bus

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionInput {
		return "in"
	}
	return "out"
}

// Info describes one audio bus
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	IsActive     bool
}

// Configuration lists the audio buses of a processor.
type Configuration struct {
	buses []Info
}

// NewConfiguration creates an empty configuration.
func NewConfiguration() *Configuration {
	return &Configuration{}
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewConfiguration().
		Add(DirectionInput, "Stereo In", 2).
		Add(DirectionOutput, "Stereo Out", 2)
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return NewConfiguration().
		Add(DirectionInput, "Mono In", 1).
		Add(DirectionOutput, "Mono Out", 1)
}

// Add appends an active bus and returns the configuration for chaining.
func (c *Configuration) Add(direction Direction, name string, channels int32) *Configuration {
	c.buses = append(c.buses, Info{
		Direction:    direction,
		ChannelCount: channels,
		Name:         name,
		IsActive:     true,
	})
	return c
}

// GetBusCount returns the number of buses in a direction
func (c *Configuration) GetBusCount(direction Direction) int32 {
	count := int32(0)
	for _, b := range c.buses {
		if b.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns the index-th bus in a direction, or nil.
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	busIndex := int32(0)
	for i := range c.buses {
		if c.buses[i].Direction == direction {
			if busIndex == index {
				return &c.buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// SetActive enables or disables the index-th bus in a direction.
func (c *Configuration) SetActive(direction Direction, index int32, active bool) bool {
	if b := c.GetBusInfo(direction, index); b != nil {
		b.IsActive = active
		return true
	}
	return false
}

// ChannelCount returns the total channels across active buses in a direction.
func (c *Configuration) ChannelCount(direction Direction) int {
	total := 0
	for _, b := range c.buses {
		if b.Direction == direction && b.IsActive {
			total += int(b.ChannelCount)
		}
	}
	return total
}
