package block

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annel0/mmo-cavein/internal/vec"
)

// Definition описывает блок в JSON-файле каталога assets/blocks.
//
//	{"id": 1000, "name": "Sandstone", "solid": true, "unstable": true}
//	{"id": 1001, "name": "Slab", "solid_faces": ["down"]}
type Definition struct {
	ID            BlockID  `json:"id"`
	Name          string   `json:"name"`
	Solid         bool     `json:"solid"`
	SolidFaces    []string `json:"solid_faces,omitempty"`
	Stabilization int      `json:"stabilization,omitempty"`
	Unstable      bool     `json:"unstable,omitempty"`
	Sound         string   `json:"fall_sound,omitempty"`
}

// definitionBehavior: поведение, построенное из Definition
type definitionBehavior struct {
	def   Definition
	faces [6]bool
}

func (d *definitionBehavior) ID() BlockID                    { return d.def.ID }
func (d *definitionBehavior) Name() string                   { return d.def.Name }
func (d *definitionBehavior) FaceSolid(face vec.Facing) bool { return int(face) < len(d.faces) && d.faces[face] }
func (d *definitionBehavior) StabilizationRating() int       { return d.def.Stabilization }
func (d *definitionBehavior) Unstable() bool                 { return d.def.Unstable }
func (d *definitionBehavior) FallSound() string              { return d.def.Sound }

// NewDefinitionBehavior проверяет описание и строит по нему поведение.
func NewDefinitionBehavior(def Definition) (BlockBehavior, error) {
	if def.ID < FirstCustomBlockID {
		return nil, fmt.Errorf("блок %q: id %d зарезервирован (должен быть >= %d)", def.Name, def.ID, FirstCustomBlockID)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("блок %d: пустое имя", def.ID)
	}
	if def.Stabilization < 0 {
		return nil, fmt.Errorf("блок %q: отрицательный рейтинг стабилизации", def.Name)
	}

	b := &definitionBehavior{def: def}
	if def.Solid {
		for i := range b.faces {
			b.faces[i] = true
		}
	}
	for _, name := range def.SolidFaces {
		face, ok := parseFacing(name)
		if !ok {
			return nil, fmt.Errorf("блок %q: неизвестная грань %q", def.Name, name)
		}
		b.faces[face] = true
	}
	return b, nil
}

// LoadJSONBlocks регистрирует все *.json описания блоков из каталога dir.
// Файл может содержать один объект или массив объектов.
func LoadJSONBlocks(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		defs, err := readDefinitions(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for _, def := range defs {
			behavior, err := NewDefinitionBehavior(def)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			Register(def.ID, behavior)
		}
	}
	return nil
}

func readDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var defs []Definition
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
		}
		return defs, nil
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
	}
	return []Definition{def}, nil
}

func parseFacing(name string) (vec.Facing, bool) {
	for _, f := range vec.AllFaces() {
		if strings.EqualFold(f.String(), name) {
			return f, true
		}
	}
	return 0, false
}
