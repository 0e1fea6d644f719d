package benchmark

import "testing"

func TestRun(t *testing.T) {
	result, err := Run(2, 4)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID not set")
	}
	if result.QueriesRecorded != 2*len(corpus) {
		t.Errorf("QueriesRecorded = %d, want %d", result.QueriesRecorded, 2*len(corpus))
	}
	if result.SuggestCalls != 4 {
		t.Errorf("SuggestCalls = %d, want 4", result.SuggestCalls)
	}
	if result.TriplesStored == 0 {
		t.Error("no triples stored by the workload")
	}
	if result.RecordsPerSecond <= 0 {
		t.Errorf("RecordsPerSecond = %v, want > 0", result.RecordsPerSecond)
	}
}

func TestRunDefaults(t *testing.T) {
	result, err := Run(0, 0)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.QueriesRecorded != 10*len(corpus) {
		t.Errorf("QueriesRecorded = %d, want default 10 rounds", result.QueriesRecorded)
	}
	if result.SuggestCalls != 100 {
		t.Errorf("SuggestCalls = %d, want default 100", result.SuggestCalls)
	}
}
