package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestSummaryMarshalCapsProfitFactor(t *testing.T) {
	s := Summary{
		FinalValue:    104_000,
		TotalReturn:   0.04,
		TotalTrades:   1,
		WinningTrades: 1,
		ProfitFactor:  math.Inf(1),
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed on all-winner summary: %v", err)
	}
	if !strings.Contains(string(data), `"ProfitFactor":99.99`) {
		t.Errorf("Profit factor not capped in output: %s", data)
	}

	var back Summary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.ProfitFactor != ProfitFactorCap {
		t.Errorf("Round-tripped profit factor = %v, want %v", back.ProfitFactor, ProfitFactorCap)
	}
}

func TestSummaryMarshalFiniteUnchanged(t *testing.T) {
	s := Summary{ProfitFactor: 2.5}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"ProfitFactor":2.5`) {
		t.Errorf("Finite profit factor altered: %s", data)
	}
}

func TestSimulationResultMarshalsWithInfiniteProfitFactor(t *testing.T) {
	result := SimulationResult{
		Config:  DefaultStrategyConfig(),
		Summary: Summary{ProfitFactor: math.Inf(1)},
	}

	data, err := json.Marshal(&result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced no output")
	}
}
