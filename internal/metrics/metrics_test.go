package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/habitline/internal/models"
)

func TestRecordCheckIn(t *testing.T) {
	m := New()

	m.RecordCheckIn(models.StatusCompleted)
	m.RecordCheckIn(models.StatusCompleted)
	m.RecordCheckIn(models.StatusSkipped)

	if val := testutil.ToFloat64(m.CheckInsTotal.WithLabelValues("completed")); val != 2 {
		t.Errorf("CheckInsTotal[completed] = %f, want 2", val)
	}
	if val := testutil.ToFloat64(m.CheckInsTotal.WithLabelValues("skipped")); val != 1 {
		t.Errorf("CheckInsTotal[skipped] = %f, want 1", val)
	}
}

func TestRecordRecalculation(t *testing.T) {
	m := New()

	m.RecordRecalculation(true, nil)
	m.RecordRecalculation(false, nil)
	m.RecordRecalculation(false, errors.New("boom"))

	for _, result := range []string{"updated", "noop", "error"} {
		if val := testutil.ToFloat64(m.RecalculationsTotal.WithLabelValues(result)); val != 1 {
			t.Errorf("RecalculationsTotal[%s] = %f, want 1", result, val)
		}
	}
}

func TestGaugeAndRefresh(t *testing.T) {
	m := New()

	m.SetBackfilled(9)
	m.RecordRefresh(nil)
	m.RecordStorageError("list_check_ins")

	if val := testutil.ToFloat64(m.BackfilledEntries); val != 9 {
		t.Errorf("BackfilledEntries = %f, want 9", val)
	}
	if val := testutil.ToFloat64(m.AnalyticsRefreshTotal.WithLabelValues("success")); val != 1 {
		t.Errorf("AnalyticsRefreshTotal[success] = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.StorageErrorsTotal.WithLabelValues("list_check_ins")); val != 1 {
		t.Errorf("StorageErrorsTotal[list_check_ins] = %f, want 1", val)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCheckIn(models.StatusMissed)
	m.RecordRecalculation(true, nil)
	m.RecordStorageError("x")
	m.SetBackfilled(1)
	m.RecordRefresh(nil)
	if err := m.WriteText(&bytes.Buffer{}); err != nil {
		t.Errorf("WriteText on nil metrics: %v", err)
	}
}

func TestWriteText(t *testing.T) {
	m := New()
	m.RecordCheckIn(models.StatusCompleted)

	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), `habitline_check_ins_total{status="completed"} 1`) {
		t.Errorf("unexpected exposition output:\n%s", buf.String())
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration
	a, b := New(), New()
	a.RecordCheckIn(models.StatusCompleted)
	if val := testutil.ToFloat64(b.CheckInsTotal.WithLabelValues("completed")); val != 0 {
		t.Errorf("instances share state: %f", val)
	}
}
