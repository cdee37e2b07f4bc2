package initwfn_test

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/godqn/initwfn"
)

// TestConstructors ensures each constructor yields a correctly typed
// wrapper holding a Gorgonia InitWFn
func TestConstructors(t *testing.T) {
	mustInit := func(w *initwfn.InitWFn, err error) *initwfn.InitWFn {
		t.Helper()
		if err != nil {
			t.Fatalf("could not create weight initializer: %v", err)
		}
		return w
	}

	cases := []struct {
		want initwfn.Type
		init *initwfn.InitWFn
	}{
		{initwfn.GlorotU, mustInit(initwfn.NewGlorotU(1.0))},
		{initwfn.GlorotN, mustInit(initwfn.NewGlorotN(1.0))},
		{initwfn.HeU, mustInit(initwfn.NewHeU(1.0))},
		{initwfn.HeN, mustInit(initwfn.NewHeN(1.0))},
		{initwfn.Zeroes, mustInit(initwfn.NewZeroes())},
		{initwfn.Ones, mustInit(initwfn.NewOnes())},
		{initwfn.Constant, mustInit(initwfn.NewConstant(0.5))},
		{initwfn.Gaussian, mustInit(initwfn.NewGaussian(0.0, 0.1))},
		{initwfn.Uniform, mustInit(initwfn.NewUniform(-0.5, 0.5))},
	}

	for _, c := range cases {
		if c.init.Type != c.want {
			t.Errorf("unexpected initializer type \n\twant(%v) \n\thave(%v)",
				c.want, c.init.Type)
		}
		if c.init.InitWFn() == nil {
			t.Errorf("%v initializer has no Gorgonia InitWFn", c.want)
		}
	}
}

// TestJSONRoundTrip ensures a weight initializer written to a
// configuration file can be recreated from it
func TestJSONRoundTrip(t *testing.T) {
	saved, err := initwfn.NewGaussian(0.5, 1.5)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}

	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("could not marshal weight initializer: %v", err)
	}

	var loaded initwfn.InitWFn
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("could not unmarshal weight initializer: %v", err)
	}

	if loaded.Type != initwfn.Gaussian {
		t.Errorf("unexpected initializer type \n\twant(%v) \n\thave(%v)",
			initwfn.Gaussian, loaded.Type)
	}
	if loaded.InitWFn() == nil {
		t.Error("unmarshalling did not create a Gorgonia InitWFn")
	}

	config, ok := loaded.Config.(initwfn.GaussianConfig)
	if !ok {
		t.Fatalf("unexpected config type %T", loaded.Config)
	}
	if config.Mean != 0.5 || config.StdDev != 1.5 {
		t.Errorf("configuration not preserved \n\twant(%v) \n\thave(%v)",
			initwfn.GaussianConfig{Mean: 0.5, StdDev: 1.5}, config)
	}
}
