package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorRecordsAndServes(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewCollector(registry)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	collector.RecordSchematicBuilt()
	collector.RecordBlock("primitive")
	collector.RecordBlock("primitive")
	collector.RecordBlock("pickup")
	collector.RecordStaggerPending(3)
	collector.RecordStaggerPending(-1)
	collector.RecordResync()
	collector.RecordReplacement()

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	text := string(body)
	for _, want := range []string{
		"schematics_built_total 1",
		`schematic_blocks_instantiated_total{block_type="primitive"} 2`,
		`schematic_blocks_instantiated_total{block_type="pickup"} 1`,
		"schematic_stagger_pending 2",
		"schematic_resyncs_total 1",
		"schematic_replacements_total 1",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("scrape output missing %q:\n%s", want, text)
		}
	}
}

func TestNewCollectorTwiceReusesRegistrations(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := NewCollector(registry)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewCollector(registry)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
	if first.SchematicsBuilt != second.SchematicsBuilt {
		t.Fatalf("expected the existing counter to be reused")
	}
}
