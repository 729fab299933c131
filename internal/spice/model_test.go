package spice

import (
	"strings"
	"testing"
)

func TestParseModel_Basic(t *testing.T) {
	def, ok := ParseModel(".MODEL D1N4148 D (IS=2.52e-9 RS=0.568 N=1.752)")
	if !ok {
		t.Fatal("expected model to parse")
	}
	if def.Name != "D1N4148" {
		t.Errorf("name = %q", def.Name)
	}
	if def.Type != ModelDiode {
		t.Errorf("type = %q, want %q", def.Type, ModelDiode)
	}
	if def.Params["IS"] != 2.52e-9 {
		t.Errorf("IS = %g", def.Params["IS"])
	}
	if def.Params["N"] != 1.752 {
		t.Errorf("N = %g", def.Params["N"])
	}
}

func TestParseModel_NoParens(t *testing.T) {
	def, ok := ParseModel(".model q2n2222 NPN BF=200 IS=1e-14")
	if !ok {
		t.Fatal("expected model to parse")
	}
	if def.Type != ModelBJTNPN {
		t.Errorf("type = %q", def.Type)
	}
	if def.Params["BF"] != 200 {
		t.Errorf("BF = %g", def.Params["BF"])
	}
}

func TestParseModel_TypeTable(t *testing.T) {
	cases := map[string]ModelType{
		"D":       ModelDiode,
		"NPN":     ModelBJTNPN,
		"pnp":     ModelBJTPNP,
		"NMOS":    ModelMOSFETN,
		"PMOS":    ModelMOSFETP,
		"NJF":     ModelJFETN,
		"PJF":     ModelJFETP,
		"SW":      ModelVoltageSwitch,
		"CSW":     ModelCurrentSwitch,
		"VENDORX": ModelOther,
	}
	for kw, want := range cases {
		def, ok := ParseModel(".MODEL m " + kw)
		if !ok {
			t.Fatalf("model with type %q should parse", kw)
		}
		if def.Type != want {
			t.Errorf("type for %q = %q, want %q", kw, def.Type, want)
		}
		if def.RawType != strings.ToUpper(kw) {
			t.Errorf("raw type for %q = %q", kw, def.RawType)
		}
	}
}

func TestParseModel_SkipsBadParams(t *testing.T) {
	def, ok := ParseModel(".MODEL m D (IS=1e-14 BAD=oops N=1.2)")
	if !ok {
		t.Fatal("expected model to parse")
	}
	if _, present := def.Params["BAD"]; present {
		t.Error("unparsable param should be dropped")
	}
	if def.Params["N"] != 1.2 {
		t.Errorf("N = %g, params after a bad pair must still parse", def.Params["N"])
	}
}

func TestParseModel_SpacedEquals(t *testing.T) {
	def, ok := ParseModel(".MODEL m D ( IS = 1e-14 )")
	if !ok {
		t.Fatal("expected model to parse")
	}
	if def.Params["IS"] != 1e-14 {
		t.Errorf("IS = %g", def.Params["IS"])
	}
}

func TestParseModel_Malformed(t *testing.T) {
	for _, in := range []string{".MODEL onlyname", "R1 1 2 1k", ".SUBCKT s 1 2"} {
		if _, ok := ParseModel(in); ok {
			t.Errorf("ParseModel(%q) should not match", in)
		}
	}
}
