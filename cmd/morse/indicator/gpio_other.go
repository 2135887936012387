//go:build !linux

package indicator

// GPIO is only available on Linux.
type GPIO struct{}

func NewGPIO(chip string, left, right int) (*GPIO, error) {
	return nil, ErrUnsupported
}

func (g *GPIO) TurnOn(line Line) error  { return ErrUnsupported }
func (g *GPIO) TurnOff(line Line) error { return ErrUnsupported }
func (g *GPIO) Close() error            { return nil }
