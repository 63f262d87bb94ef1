package block

import "strings"

const (
	// Delimiter разделяет базу и модификаторы в текстовом виде идентификатора
	Delimiter = "|"
	// ModBackground - модификатор фонового слоя ("stone|b")
	ModBackground = "b"
)

// BaseID - числовой идентификатор базового блока, индекс в реестре
type BaseID uint16

// Базовые блоки встроенного каталога. Порядок совпадает с catalog.yaml.
const (
	NoneBase BaseID = iota // пустая ячейка, не записанная генератором
	AirBase
	SoilBase
	DirtBase
	StoneBase
	BlackstoneBase
	SandBase
	CoalBase
	IronBase
	DiamondBase
	WoodBase
	PalmWoodBase
	LeafBase
	PoppyBase
	YellowPoppyBase
	TorchBase
	LanternBase
	AppleBase
)

// ID - идентификатор блока в клетке: база плюс признак фонового слоя.
// Разбор строки "stone|b" происходит только на границе (каталог, снапшоты).
type ID struct {
	Base       BaseID
	Background bool
}

// Часто используемые идентификаторы
var (
	None  = ID{}
	Air   = ID{Base: AirBase}
	Stone = ID{Base: StoneBase}
)

// Of возвращает идентификатор переднего слоя для базы
func Of(base BaseID) ID {
	return ID{Base: base}
}

// IsZero сообщает, что клетка не записана
func (id ID) IsZero() bool {
	return id.Base == NoneBase
}

// Back возвращает фоновый вариант блока
func (id ID) Back() ID {
	return ID{Base: id.Base, Background: true}
}

// Front возвращает вариант переднего слоя
func (id ID) Front() ID {
	return ID{Base: id.Base}
}

func (id ID) String() string {
	return Default().Format(id)
}

// Normalize разбивает текстовый идентификатор на базу и модификаторы.
func Normalize(s string) (string, []string) {
	parts := strings.Split(s, Delimiter)
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0], parts[1:]
}
