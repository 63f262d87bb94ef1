package block

import (
	"fmt"
	"strings"
)

// Flags - набор свойств базового блока. Выводится только из базы, модификаторы
// (например фон) на флаги не влияют.
type Flags uint32

const (
	NoFlags  Flags = 0
	Walkable Flags = 1 << iota
	Build
	Consume
	Ore
	Organic
	Util
	Gear
	NonSquare
	LightSource
	Empty
	Unbreakable
	Unplaceable
	Food
	Decor
)

var flagNames = map[string]Flags{
	"WALKABLE":     Walkable,
	"BUILD":        Build,
	"CONSUME":      Consume,
	"ORE":          Ore,
	"ORGANIC":      Organic,
	"UTIL":         Util,
	"GEAR":         Gear,
	"NONSQUARE":    NonSquare,
	"LIGHT_SOURCE": LightSource,
	"EMPTY":        Empty,
	"UNBREAKABLE":  Unbreakable,
	"UNPLACEABLE":  Unplaceable,
	"FOOD":         Food,
	"DECOR":        Decor,
}

// Has проверяет, что установлены все биты f
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// ParseFlags собирает битовую маску из списка имён
func ParseFlags(names []string) (Flags, error) {
	var fl Flags
	for _, n := range names {
		f, ok := flagNames[strings.ToUpper(strings.TrimSpace(n))]
		if !ok {
			return NoFlags, fmt.Errorf("unknown block flag %q", n)
		}
		fl |= f
	}
	return fl, nil
}

func (fl Flags) String() string {
	if fl == NoFlags {
		return "NONE"
	}
	var parts []string
	for bit := Walkable; bit <= Decor; bit <<= 1 {
		if fl&bit == 0 {
			continue
		}
		for name, f := range flagNames {
			if f == bit {
				parts = append(parts, name)
				break
			}
		}
	}
	return strings.Join(parts, "|")
}
