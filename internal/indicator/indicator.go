// Package indicator defines the command sent to a physical indicator and its wire encoding.
package indicator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ibs-source/bindicator/pkg/jsonfast"
)

// ID addresses one of the display's indicators.
type ID int

// Valid indicator ids.
const (
	Indicator1 ID = 1
	Indicator2 ID = 2
	Indicator3 ID = 3
)

// ErrInvalidIndicator is returned for ids outside Indicator1..Indicator3.
var ErrInvalidIndicator = errors.New("indicator number not valid")

// Valid reports whether id addresses a real indicator.
func (id ID) Valid() bool {
	return id >= Indicator1 && id <= Indicator3
}

// RGB is a colour with 0-255 channels.
type RGB [3]uint8

// Off turns an indicator dark.
var Off = RGB{0, 0, 0}

// Command is one instruction for one indicator. BlinkMs of zero means solid.
type Command struct {
	Indicator ID
	Colour    RGB
	BlinkMs   int
}

// New builds a validated command.
func New(id ID, colour RGB, blinkMs int) (Command, error) {
	c := Command{Indicator: id, Colour: colour, BlinkMs: blinkMs}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

// Validate checks the indicator id and blink interval.
func (c Command) Validate() error {
	if !c.Indicator.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidIndicator, c.Indicator)
	}
	if c.BlinkMs < 0 {
		return fmt.Errorf("blink interval must not be negative: %d", c.BlinkMs)
	}
	return nil
}

// Endpoint returns the topic suffix the display listens on for this indicator, e.g. "indicator2".
func (c Command) Endpoint() (string, error) {
	if !c.Indicator.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndicator, c.Indicator)
	}
	return "indicator" + strconv.Itoa(int(c.Indicator)), nil
}

// Marshal encodes the command as {"IndicatorNumber":2,"Color":[0,100,0],"Blink":550}.
func (c Command) Marshal() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	b := jsonfast.New(64)
	b.BeginObject()
	b.AddIntField("IndicatorNumber", int(c.Indicator))
	b.AddIntArrayField("Color", []int{int(c.Colour[0]), int(c.Colour[1]), int(c.Colour[2])})
	b.AddIntField("Blink", c.BlinkMs)
	b.EndObject()
	return b.Bytes(), nil
}
