package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// Plan describes a company to onboard. Hierarchy levels reference their
// parent by name; a parent must be listed before its children.
type Plan struct {
	Company   CompanyPlan `yaml:"company"`
	Roles     []string    `yaml:"roles"`
	Hierarchy []LevelPlan `yaml:"hierarchy"`

	dir string
}

type CompanyPlan struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Logo  string `yaml:"logo"`
}

type LevelPlan struct {
	Name     string `yaml:"name"`
	Parent   string `yaml:"parent"`
	Quantity int    `yaml:"quantity"`
}

// loadPlan reads and decodes a plan file. Unknown keys are rejected.
func loadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	return &p, nil
}

// CompanyIdentity resolves the stage 1 payload, reading the logo file
// relative to the plan's directory.
func (p *Plan) CompanyIdentity() (domain.CompanyIdentity, error) {
	company := domain.CompanyIdentity{Name: p.Company.Name, Color: p.Company.Color}
	if p.Company.Logo == "" {
		return company, nil
	}

	logoPath := p.Company.Logo
	if !filepath.IsAbs(logoPath) {
		logoPath = filepath.Join(p.dir, logoPath)
	}
	content, err := os.ReadFile(logoPath)
	if err != nil {
		return domain.CompanyIdentity{}, fmt.Errorf("reading logo: %w", err)
	}
	company.Logo = content
	company.LogoFilename = filepath.Base(logoPath)
	return company, nil
}

// Tree builds the hierarchy model from the plan, enforcing the same rules
// as the console: unique names, known parents and the seat cap.
func (p *Plan) Tree() (*domain.HierarchyTree, error) {
	tree := domain.NewHierarchyTree()
	for i, level := range p.Hierarchy {
		var parentID *domain.NodeID
		if level.Parent != "" {
			parent, ok := tree.FindByName(level.Parent)
			if !ok {
				return nil, fmt.Errorf("hierarchy[%d] %q: parent %q must be listed before it", i, level.Name, level.Parent)
			}
			parentID = &parent.ID
		}
		if _, err := tree.AddNode(level.Name, parentID, level.Quantity); err != nil {
			return nil, fmt.Errorf("hierarchy[%d] %q: %w", i, level.Name, err)
		}
	}
	return tree, nil
}
