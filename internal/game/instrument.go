package game

import "fmt"

type Instrument uint8

const (
	Piano Instrument = iota
	ElectroGuitar
)

const NInstrument = 2

func Instruments() []Instrument {
	return []Instrument{Piano, ElectroGuitar}
}

var instrumentNames = map[Instrument]string{
	Piano:         "Piano",
	ElectroGuitar: "Electro Guitar",
}

func (i Instrument) String() string {
	name, ok := instrumentNames[i]
	if !ok {
		return fmt.Sprintf("Instrument(%d)", uint8(i))
	}
	return name
}

func (i Instrument) Valid() bool {
	_, ok := instrumentNames[i]
	return ok
}

// Toggle flips between the two instruments.
func (i Instrument) Toggle() Instrument {
	if i == Piano {
		return ElectroGuitar
	}
	return Piano
}
