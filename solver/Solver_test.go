package solver_test

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/godqn/solver"
)

// TestConstructors ensures each constructor yields a correctly typed
// wrapper holding a Gorgonia solver
func TestConstructors(t *testing.T) {
	rmsProp, err := solver.NewDefaultRMSProp(0.001, 32)
	if err != nil {
		t.Fatalf("could not create RMSProp solver: %v", err)
	}
	if rmsProp.Type != solver.RMSProp || rmsProp.Solver == nil {
		t.Error("default RMSProp solver misconfigured")
	}

	adam, err := solver.NewDefaultAdam(0.001, 32)
	if err != nil {
		t.Fatalf("could not create Adam solver: %v", err)
	}
	if adam.Type != solver.Adam || adam.Solver == nil {
		t.Error("default Adam solver misconfigured")
	}

	vanilla, err := solver.NewVanilla(0.5, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create Vanilla solver: %v", err)
	}
	if vanilla.Type != solver.Vanilla || vanilla.Solver == nil {
		t.Error("Vanilla solver misconfigured")
	}
}

// TestNewRMSPropEta ensures values of η that Gorgonia cannot honor are
// rejected
func TestNewRMSPropEta(t *testing.T) {
	_, err := solver.NewRMSProp(0.001, 1e-8, 0.5, 0.999, 32, -1.0)
	if err == nil {
		t.Error("expected an error for a non-default η")
	}
}

// TestJSONRoundTrip ensures a solver written to a configuration file
// can be recreated from it
func TestJSONRoundTrip(t *testing.T) {
	saved, err := solver.NewRMSProp(0.01, 1e-8, 0.001, 0.9, 16, 5.0)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}

	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("could not marshal solver: %v", err)
	}

	var loaded solver.Solver
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("could not unmarshal solver: %v", err)
	}

	if loaded.Type != solver.RMSProp {
		t.Errorf("unexpected solver type \n\twant(%v) \n\thave(%v)",
			solver.RMSProp, loaded.Type)
	}
	if loaded.Solver == nil {
		t.Error("unmarshalling did not create a Gorgonia solver")
	}

	config, ok := loaded.Config.(*solver.RMSPropConfig)
	if !ok {
		t.Fatalf("unexpected config type %T", loaded.Config)
	}
	if config.StepSize != 0.01 || config.Rho != 0.9 || config.Batch != 16 ||
		config.Clip != 5.0 {
		t.Errorf("configuration not preserved \n\twant(%v) \n\thave(%v)",
			solver.RMSPropConfig{StepSize: 0.01, Epsilon: 1e-8, Eta: 0.001,
				Rho: 0.9, Batch: 16, Clip: 5.0}, *config)
	}
}
