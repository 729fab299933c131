package spice

import (
	"strings"
	"testing"
)

func parseLib(t *testing.T, text string) *Library {
	t.Helper()
	return NewLibraryParser(nil).Parse([]byte(text))
}

func TestParseLibrary_ModelAndSubckt(t *testing.T) {
	lib := parseLib(t, `
.MODEL D1N4148 D (IS=2.52e-9)
.SUBCKT test_sub 1 2
R1 1 2 1K
.ENDS
`)
	if len(lib.Models) != 1 || lib.Models[0].Name != "D1N4148" {
		t.Fatalf("models = %+v", lib.Models)
	}
	if len(lib.Subcircuits) != 1 {
		t.Fatalf("subcircuits = %+v", lib.Subcircuits)
	}
	sub := lib.Subcircuits[0]
	if sub.Name != "test_sub" {
		t.Errorf("name = %q", sub.Name)
	}
	if len(sub.Nodes) != 2 || sub.Nodes[0] != "1" || sub.Nodes[1] != "2" {
		t.Errorf("nodes = %v", sub.Nodes)
	}
	if !strings.Contains(sub.Body, "R1 1 2 1K") {
		t.Errorf("body = %q, want it to contain the resistor line", sub.Body)
	}
}

func TestParseLibrary_MetadataExtraction(t *testing.T) {
	lib := parseLib(t, `
* PRODUCT_NAME: Acme   Classic 6
* DIAMETER: 6.5 in
* IMPEDANCE: 8 ohms
* qts: 0.35
.SUBCKT acme6 1 2
R1 1 2 6.4
.ENDS acme6
`)
	if len(lib.Subcircuits) != 1 {
		t.Fatalf("subcircuits = %+v", lib.Subcircuits)
	}
	sub := lib.Subcircuits[0]
	if got := sub.Metadata["DIAMETER"]; got != "6.5" {
		t.Errorf("DIAMETER = %q, want %q", got, "6.5")
	}
	if got := sub.Metadata["IMPEDANCE"]; got != "8" {
		t.Errorf("IMPEDANCE = %q, want %q", got, "8")
	}
	if got := sub.Metadata["PRODUCT_NAME"]; got != "Acme Classic 6" {
		t.Errorf("PRODUCT_NAME = %q, internal whitespace should collapse", got)
	}
	if got := sub.TSParams["QTS"]; got != 0.35 {
		t.Errorf("QTS = %g, want 0.35", got)
	}
}

func TestParseLibrary_NonNumericTSValueStaysInMetadata(t *testing.T) {
	lib := parseLib(t, `
* QTS: unknown
.SUBCKT s 1 2
R1 1 2 1
.ENDS
`)
	sub := lib.Subcircuits[0]
	if sub.Metadata["QTS"] != "unknown" {
		t.Errorf("metadata QTS = %q", sub.Metadata["QTS"])
	}
	if _, ok := sub.TSParams["QTS"]; ok {
		t.Error("non-numeric QTS must not appear in TSParams")
	}
}

func TestParseLibrary_ImplicitClose(t *testing.T) {
	lib := parseLib(t, `
.SUBCKT first 1 2
R1 1 2 1k
.SUBCKT second 1 2 3
R2 1 2 2k
.ENDS
.MODEL m D (IS=1e-14)
`)
	if len(lib.Subcircuits) != 2 {
		t.Fatalf("subcircuits = %d, want 2 (unterminated block implicitly closed)", len(lib.Subcircuits))
	}
	if lib.Subcircuits[0].Name != "first" || !strings.Contains(lib.Subcircuits[0].Body, "R1") {
		t.Errorf("first = %+v", lib.Subcircuits[0])
	}
	if lib.Subcircuits[1].Name != "second" || len(lib.Subcircuits[1].Nodes) != 3 {
		t.Errorf("second = %+v", lib.Subcircuits[1])
	}
	if len(lib.Models) != 1 {
		t.Errorf("models = %+v", lib.Models)
	}
}

func TestParseLibrary_ModelHeaderClosesBlock(t *testing.T) {
	lib := parseLib(t, `
.SUBCKT open 1 2
R1 1 2 1k
.MODEL m D (IS=1e-14)
`)
	if len(lib.Subcircuits) != 1 || len(lib.Models) != 1 {
		t.Fatalf("subcircuits = %d, models = %d", len(lib.Subcircuits), len(lib.Models))
	}
	if strings.Contains(lib.Subcircuits[0].Body, ".MODEL") {
		t.Error("model header must not end up in the block body")
	}
}

func TestParseLibrary_InternalCommentsDropped(t *testing.T) {
	lib := parseLib(t, `
.SUBCKT s 1 2
R1 1 2 1k
* just a note
C1 2 0 10u
.ENDS
`)
	sub := lib.Subcircuits[0]
	if strings.Contains(sub.Body, "note") {
		t.Errorf("body = %q, comments should be dropped", sub.Body)
	}
	if !strings.Contains(sub.Body, "C1 2 0 10u") {
		t.Errorf("body = %q, comment must not terminate the block", sub.Body)
	}
}

func TestParseLibrary_MalformedEntriesSkipped(t *testing.T) {
	lib := parseLib(t, `
.MODEL incomplete
.SUBCKT noNodes
.MODEL good D (IS=1e-14)
.SUBCKT ok 1 2
R1 1 2 1k
.ENDS
`)
	if len(lib.Models) != 1 || lib.Models[0].Name != "good" {
		t.Errorf("models = %+v", lib.Models)
	}
	if len(lib.Subcircuits) != 1 || lib.Subcircuits[0].Name != "ok" {
		t.Errorf("subcircuits = %+v", lib.Subcircuits)
	}
}

func TestParseLibrary_ContinuedHeader(t *testing.T) {
	lib := parseLib(t, `
.SUBCKT wide 1 2
+ 3 4
R1 1 4 1k
.ENDS
`)
	if len(lib.Subcircuits) != 1 {
		t.Fatalf("subcircuits = %+v", lib.Subcircuits)
	}
	if len(lib.Subcircuits[0].Nodes) != 4 {
		t.Errorf("nodes = %v, continuation must join before header parse", lib.Subcircuits[0].Nodes)
	}
}

func TestParseLibrary_CustomUnitList(t *testing.T) {
	p := NewLibraryParser([]string{"furlongs"})
	lib := p.Parse([]byte("* LENGTH: 3 furlongs\n* WIDTH: 2 in\n.SUBCKT s 1 2\nR1 1 2 1\n.ENDS\n"))
	sub := lib.Subcircuits[0]
	if sub.Metadata["LENGTH"] != "3" {
		t.Errorf("LENGTH = %q", sub.Metadata["LENGTH"])
	}
	if sub.Metadata["WIDTH"] != "2 in" {
		t.Errorf("WIDTH = %q, %q is not in the custom unit list", sub.Metadata["WIDTH"], "in")
	}
}
