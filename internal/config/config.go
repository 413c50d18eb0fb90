// Package config loads the three YAML documents that stand in for the
// original's env.conf/rescuers.conf/emergency_types.conf: the grid/bus
// settings, the rescuer catalog (and the digital twins it spawns), and the
// emergency type catalog. Parsing never aborts on a single malformed entry —
// it collects warnings into a multierror.Error and keeps going, mirroring
// the originals' "log and continue" behavior.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"dispatchsim/internal/model"
)

// Grid carries the bus name and the coordinate bounds requests are
// validated against.
type Grid struct {
	QueueName string `yaml:"queue_name"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
}

func LoadGrid(path string) (Grid, error) {
	var g Grid
	b, err := os.ReadFile(path)
	if err != nil {
		return g, fmt.Errorf("read grid config: %w", err)
	}
	if err := yaml.Unmarshal(b, &g); err != nil {
		return g, fmt.Errorf("parse grid config: %w", err)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return g, fmt.Errorf("grid config: width/height must be positive, got %dx%d", g.Width, g.Height)
	}
	// Spec Open Question #1: distances stay well inside int range as long as
	// grid dimensions are bounded far below the overflow threshold.
	const maxDim = 1_000_000_000
	if g.Width >= maxDim || g.Height >= maxDim {
		return g, fmt.Errorf("grid config: width/height must be below %d", maxDim)
	}
	if g.QueueName == "" {
		return g, fmt.Errorf("grid config: queue_name is required")
	}
	return g, nil
}

func (g Grid) Summary() string {
	return fmt.Sprintf("bus=%q grid=%dx%d", g.QueueName, g.Width, g.Height)
}

// rescuerTypeYAML is one entry of rescuers.yaml: a type plus how many twins
// of it to spawn, all starting IDLE at (base_x, base_y) — mirrors
// parse_rescuers.c's per-type "count" loop.
type rescuerTypeYAML struct {
	Name  string `yaml:"name"`
	Speed int    `yaml:"speed"`
	BaseX int    `yaml:"base_x"`
	BaseY int    `yaml:"base_y"`
	Count int    `yaml:"count"`
}

type rescuersFile struct {
	Types []rescuerTypeYAML `yaml:"types"`
}

// RescuerCatalog is the parsed rescuer type list plus the digital twin pool
// it seeds.
type RescuerCatalog struct {
	Types []*model.RescuerType
	Twins []*model.DigitalTwin
}

func (c RescuerCatalog) Summary() string {
	return fmt.Sprintf("%d rescuer types, %d digital twins", len(c.Types), len(c.Twins))
}

// LoadRescuers parses rescuers.yaml. Entries with speed <= 0 or count < 0
// are skipped with a warning collected into the returned multierror rather
// than aborting the whole load.
func LoadRescuers(path string) (RescuerCatalog, error) {
	var cat RescuerCatalog
	b, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("read rescuer catalog: %w", err)
	}
	var parsed rescuersFile
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return cat, fmt.Errorf("parse rescuer catalog: %w", err)
	}

	var warnings *multierror.Error
	nextTwinID := 1
	for i, rt := range parsed.Types {
		if rt.Name == "" || rt.Speed <= 0 {
			warnings = multierror.Append(warnings, fmt.Errorf("entry %d (%q): speed must be positive, got %d", i, rt.Name, rt.Speed))
			continue
		}
		if rt.Count < 0 {
			warnings = multierror.Append(warnings, fmt.Errorf("entry %d (%q): count must not be negative, got %d", i, rt.Name, rt.Count))
			continue
		}
		t := &model.RescuerType{Name: rt.Name, Speed: rt.Speed, BaseX: rt.BaseX, BaseY: rt.BaseY}
		cat.Types = append(cat.Types, t)
		for k := 0; k < rt.Count; k++ {
			cat.Twins = append(cat.Twins, &model.DigitalTwin{
				ID:      nextTwinID,
				X:       rt.BaseX,
				Y:       rt.BaseY,
				Rescuer: t,
				Status:  model.Idle,
			})
			nextTwinID++
		}
	}
	if len(cat.Types) == 0 {
		return cat, fmt.Errorf("rescuer catalog: no valid rescuer types found")
	}
	return cat, warnings.ErrorOrNil()
}

// emergencyTypeYAML mirrors one "[name] [priority] type:count,duration;..."
// line from emergency_types.conf.
type emergencyTypeYAML struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Priority     int16  `yaml:"priority"`
	Requirements []struct {
		Type     string `yaml:"type"`
		Count    int    `yaml:"count"`
		Duration int    `yaml:"duration_sec"`
	} `yaml:"requirements"`
}

type emergencyTypesFile struct {
	Types []emergencyTypeYAML `yaml:"types"`
}

// LoadEmergencyTypes parses emergency_types.yaml against an already-loaded
// rescuer catalog. Each requirement naming an unknown rescuer type is
// skipped with a warning; an emergency type entry is discarded ENTIRELY if
// none of its requested rescuer type names resolve, and otherwise kept with
// only the requirements that did resolve, matching
// parse_emergency_types.c's "rescuers_req_number > 0" gate.
func LoadEmergencyTypes(path string, rescuers RescuerCatalog) ([]*model.EmergencyType, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read emergency type catalog: %w", err)
	}
	var parsed emergencyTypesFile
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("parse emergency type catalog: %w", err)
	}

	byName := make(map[string]*model.RescuerType, len(rescuers.Types))
	for _, t := range rescuers.Types {
		byName[t.Name] = t
	}

	var warnings *multierror.Error
	var out []*model.EmergencyType
	for i, et := range parsed.Types {
		if et.Name == "" {
			warnings = multierror.Append(warnings, fmt.Errorf("entry %d: missing name", i))
			continue
		}
		var reqs []model.RescuerRequirement
		for _, r := range et.Requirements {
			rt, ok := byName[r.Type]
			if !ok {
				warnings = multierror.Append(warnings, fmt.Errorf("%s: unknown rescuer type %q", et.Name, r.Type))
				continue
			}
			reqs = append(reqs, model.RescuerRequirement{
				Type:            rt,
				RequiredCount:   r.Count,
				TimeToManageSec: r.Duration,
			})
		}
		if len(reqs) == 0 {
			warnings = multierror.Append(warnings, fmt.Errorf("%s: no valid rescuer requirement, dropping type", et.Name))
			continue
		}
		out = append(out, &model.EmergencyType{
			Name:         et.Name,
			Description:  et.Description,
			Priority:     et.Priority,
			Requirements: reqs,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("emergency type catalog: no valid emergency types found")
	}
	return out, warnings.ErrorOrNil()
}

func SummaryEmergencyTypes(types []*model.EmergencyType) string {
	return fmt.Sprintf("%d emergency types loaded", len(types))
}
