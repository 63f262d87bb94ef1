package block

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxLight - верхняя граница уровня освещения (уровни 0..MaxLight-1)
const MaxLight = 16

// ErrUnknownBlock возвращается при разборе неизвестного имени блока
var ErrUnknownBlock = errors.New("unknown block")

//go:embed catalog.yaml
var builtinCatalog []byte

// Params - числовые параметры базового блока
type Params struct {
	Light    int     // сила излучения, 0 - не светит
	Falloff  int     // потеря уровня за шаг BFS
	Hardness float64 // порог разрушения
	VeinSize int     // средний размер рудной жилы
}

// DefaultParams - значения для блоков без явных параметров
var DefaultParams = Params{Light: 0, Falloff: 1, Hardness: 1}

// Def описывает базовый блок в реестре
type Def struct {
	Name   string
	Flags  Flags
	Params Params
	Drop   BaseID // NoneBase - ничего не выпадает
}

type catalogEntry struct {
	Name     string   `yaml:"name"`
	Flags    []string `yaml:"flags"`
	Light    int      `yaml:"light"`
	Falloff  *int     `yaml:"light_falloff"`
	Hardness *float64 `yaml:"hardness"`
	VeinSize int      `yaml:"vein_size"`
	Drop     string   `yaml:"drop"`
}

type catalogFile struct {
	Blocks []catalogEntry `yaml:"blocks"`
}

// Registry - неизменяемый после загрузки справочник блоков.
type Registry struct {
	defs   []Def
	byName map[string]BaseID
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default возвращает реестр встроенного каталога. Загружается один раз.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(builtinCatalog)
		if err != nil {
			panic(fmt.Sprintf("builtin block catalog: %v", err))
		}
		defaultReg = r
	})
	return defaultReg
}

// Load читает каталог в формате YAML
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read block catalog: %w", err)
	}
	return Parse(data)
}

// Parse разбирает каталог блоков. Запись с индексом i получает BaseID i+1.
func Parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode block catalog: %w", err)
	}

	reg := &Registry{
		defs:   []Def{{Name: "none", Params: DefaultParams}},
		byName: map[string]BaseID{"none": NoneBase},
	}
	for _, e := range file.Blocks {
		if _, dup := reg.byName[e.Name]; dup || e.Name == "" {
			return nil, fmt.Errorf("block %q: empty or duplicate name", e.Name)
		}
		if strings.Contains(e.Name, Delimiter) {
			return nil, fmt.Errorf("block %q: name must not contain %q", e.Name, Delimiter)
		}
		reg.byName[e.Name] = BaseID(len(reg.defs))
		reg.defs = append(reg.defs, Def{Name: e.Name})
	}

	// второй проход: ссылки drop могут указывать вперёд
	for i, e := range file.Blocks {
		def := &reg.defs[i+1]
		fl, err := ParseFlags(e.Flags)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", e.Name, err)
		}
		def.Flags = fl
		def.Params = DefaultParams
		def.Params.Light = e.Light
		def.Params.VeinSize = e.VeinSize
		if e.Falloff != nil {
			def.Params.Falloff = *e.Falloff
		}
		if e.Hardness != nil {
			def.Params.Hardness = *e.Hardness
		}
		if def.Params.Light < 0 || def.Params.Light >= MaxLight {
			return nil, fmt.Errorf("block %q: light %d out of range [0,%d)", e.Name, def.Params.Light, MaxLight)
		}
		if def.Params.Falloff < 1 {
			return nil, fmt.Errorf("block %q: light_falloff must be positive", e.Name)
		}

		switch e.Drop {
		case "":
			def.Drop = BaseID(i + 1)
		case "none":
			def.Drop = NoneBase
		default:
			d, ok := reg.byName[e.Drop]
			if !ok {
				return nil, fmt.Errorf("block %q: drop %q: %w", e.Name, e.Drop, ErrUnknownBlock)
			}
			def.Drop = d
		}
	}
	return reg, nil
}

// Get возвращает описание базового блока
func (r *Registry) Get(base BaseID) (Def, bool) {
	if int(base) >= len(r.defs) {
		return Def{}, false
	}
	return r.defs[base], true
}

// Len возвращает количество записей, включая none
func (r *Registry) Len() int {
	return len(r.defs)
}

// Flags возвращает флаги базы; неизвестная база - NoFlags.
func (r *Registry) Flags(base BaseID) Flags {
	if int(base) >= len(r.defs) {
		return NoFlags
	}
	return r.defs[base].Flags
}

// Params возвращает параметры базы; неизвестная база - DefaultParams.
func (r *Registry) Params(base BaseID) Params {
	if int(base) >= len(r.defs) {
		return DefaultParams
	}
	return r.defs[base].Params
}

// Has проверяет флаг у базы идентификатора
func (r *Registry) Has(id ID, f Flags) bool {
	return r.Flags(id.Base).Has(f)
}

// Lacks - обратное к Has
func (r *Registry) Lacks(id ID, f Flags) bool {
	return !r.Has(id, f)
}

// IsEmpty сообщает, что клетка свободна: не записана или содержит пустой блок
func (r *Registry) IsEmpty(id ID) bool {
	return id.IsZero() || r.Has(id, Empty)
}

// Emits возвращает силу и затухание источника света. Фоновые блоки не светят.
func (r *Registry) Emits(id ID) (power, falloff int, ok bool) {
	if id.Background || !r.Has(id, LightSource) {
		return 0, 0, false
	}
	p := r.Params(id.Base)
	if p.Light <= 0 {
		return 0, 0, false
	}
	return p.Light, p.Falloff, true
}

// Lookup ищет базу по имени
func (r *Registry) Lookup(name string) (BaseID, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// ParseID разбирает текстовый идентификатор вида "stone" или "stone|b".
func (r *Registry) ParseID(s string) (ID, error) {
	name, mods := Normalize(s)
	base, ok := r.byName[name]
	if !ok {
		return None, fmt.Errorf("%q: %w", s, ErrUnknownBlock)
	}
	id := ID{Base: base}
	for _, m := range mods {
		if m != ModBackground {
			return None, fmt.Errorf("%q: unknown modifier %q", s, m)
		}
		id.Background = true
	}
	return id, nil
}

// MustID - ParseID для литералов в коде и тестах
func (r *Registry) MustID(s string) ID {
	id, err := r.ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Format возвращает текстовый вид идентификатора
func (r *Registry) Format(id ID) string {
	name := fmt.Sprintf("#%d", id.Base)
	if int(id.Base) < len(r.defs) {
		name = r.defs[id.Base].Name
	}
	if id.Background {
		return name + Delimiter + ModBackground
	}
	return name
}
