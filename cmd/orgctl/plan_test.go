package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing plan: %v", err)
	}
	return path
}

const samplePlan = `
company:
  name: Acme
  color: "#112233"
roles:
  - Gerente
  - "  "
  - Vendedor
hierarchy:
  - name: Gerencia
    quantity: 1
  - name: Ventas
    parent: gerencia
    quantity: 12
`

func TestLoadPlan(t *testing.T) {
	p, err := loadPlan(writePlan(t, samplePlan))
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	if p.Company.Name != "Acme" || p.Company.Color != "#112233" {
		t.Errorf("company = %+v", p.Company)
	}
	if len(p.Roles) != 3 {
		t.Errorf("roles = %v, want 3 entries", p.Roles)
	}
	if len(p.Hierarchy) != 2 || p.Hierarchy[1].Parent != "gerencia" {
		t.Errorf("hierarchy = %+v", p.Hierarchy)
	}
}

func TestLoadPlan_UnknownField(t *testing.T) {
	_, err := loadPlan(writePlan(t, "company:\n  name: Acme\n  colour: red\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("error = %v, want mention of the unknown key", err)
	}
}

func TestLoadPlan_MissingFile(t *testing.T) {
	if _, err := loadPlan(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPlanTree(t *testing.T) {
	p, err := loadPlan(writePlan(t, samplePlan))
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	tree, err := p.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tree.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tree.Len())
	}
	if tree.TotalQuantity() != 13 {
		t.Errorf("TotalQuantity = %d, want 13", tree.TotalQuantity())
	}
	levels := tree.Levels()
	if levels[1].Parent == nil || *levels[1].Parent != "Gerencia" {
		t.Errorf("Ventas parent = %v, want Gerencia", levels[1].Parent)
	}
}

func TestPlanTree_Errors(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want string
	}{
		{
			name: "parent listed later",
			plan: "hierarchy:\n  - {name: Ventas, parent: Gerencia, quantity: 2}\n  - {name: Gerencia, quantity: 1}\n",
			want: `hierarchy[0] "Ventas": parent "Gerencia" must be listed before it`,
		},
		{
			name: "duplicate name",
			plan: "hierarchy:\n  - {name: Ventas, quantity: 2}\n  - {name: VENTAS, quantity: 1}\n",
			want: `hierarchy[1] "VENTAS"`,
		},
		{
			name: "over capacity",
			plan: "hierarchy:\n  - {name: A, quantity: 300}\n  - {name: B, quantity: 201}\n",
			want: `hierarchy[1] "B"`,
		},
		{
			name: "zero quantity",
			plan: "hierarchy:\n  - {name: A, quantity: 0}\n",
			want: `hierarchy[0] "A"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := loadPlan(writePlan(t, tt.plan))
			if err != nil {
				t.Fatalf("loadPlan: %v", err)
			}
			_, err = p.Tree()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestPlanCompanyIdentity_Logo(t *testing.T) {
	path := writePlan(t, "company:\n  name: Acme\n  color: \"#abcdef\"\n  logo: assets/logo.png\n")
	dir := filepath.Join(filepath.Dir(path), "assets")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	logo := []byte("\x89PNG\r\n\x1a\nrest")
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), logo, 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := loadPlan(path)
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	company, err := p.CompanyIdentity()
	if err != nil {
		t.Fatalf("CompanyIdentity: %v", err)
	}
	if string(company.Logo) != string(logo) {
		t.Errorf("Logo = %q, want %q", company.Logo, logo)
	}
	if company.LogoFilename != "logo.png" {
		t.Errorf("LogoFilename = %q, want logo.png", company.LogoFilename)
	}
}

func TestPlanCompanyIdentity_MissingLogo(t *testing.T) {
	p, err := loadPlan(writePlan(t, "company:\n  name: Acme\n  logo: nope.png\n"))
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	if _, err := p.CompanyIdentity(); err == nil {
		t.Fatal("expected error for missing logo file")
	}
}
