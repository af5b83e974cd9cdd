package config

import "testing"

func TestDefaultsMatchOriginal(t *testing.T) {
	o, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.Train {
		t.Fatal("Train should default to false")
	}
	if o.RangesTh != defaultRangesTh {
		t.Fatalf("RangesTh = %v, want %v", o.RangesTh, defaultRangesTh)
	}
	if o.RangesProp != defaultRangesProp {
		t.Fatalf("RangesProp = %v, want %v", o.RangesProp, defaultRangesProp)
	}
	if o.Iterations != 100 {
		t.Fatalf("Iterations = %v, want 100", o.Iterations)
	}
	if o.CombineMethod() != MostConfident {
		t.Fatalf("CombineMethod = %v, want MostConfident", o.CombineMethod())
	}
}

func TestTrainAndModelTokens(t *testing.T) {
	o, err := Parse([]string{"train", "model=lib.mod", "config=lib.conf", "iter=250"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.Train {
		t.Fatal("expected Train true")
	}
	if o.Model != "lib.mod" || o.Config != "lib.conf" {
		t.Fatalf("Model/Config = %q/%q", o.Model, o.Config)
	}
	if o.Iterations != 250 {
		t.Fatalf("Iterations = %v, want 250", o.Iterations)
	}
}

func TestSoapBareFlagUsesDefaultThreshold(t *testing.T) {
	o, err := Parse([]string{"soap"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.SOAPEnabled {
		t.Fatal("expected SOAPEnabled true")
	}
	if o.SOAPThreshold != defaultSOAPThresh {
		t.Fatalf("SOAPThreshold = %v, want %v", o.SOAPThreshold, defaultSOAPThresh)
	}
}

func TestSoapWithExplicitThreshold(t *testing.T) {
	o, err := Parse([]string{"soap=0.75"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.SOAPThreshold != 0.75 {
		t.Fatalf("SOAPThreshold = %v, want 0.75", o.SOAPThreshold)
	}
}

func TestRangesThRejectsNegative(t *testing.T) {
	if _, err := Parse([]string{"ranges-th=-1"}); err == nil {
		t.Fatal("expected an error for negative ranges-th")
	}
}

func TestRangesPropRejectsOutOfRange(t *testing.T) {
	if _, err := Parse([]string{"ranges-prop=1.5"}); err == nil {
		t.Fatal("expected an error for ranges-prop outside [0,1]")
	}
}

func TestMeanAndGeoAreMutuallyExclusive(t *testing.T) {
	if _, err := Parse([]string{"mean", "geo"}); err == nil {
		t.Fatal("expected an error when both mean and geo are set")
	}
}

func TestGeoSelectsGeometricMean(t *testing.T) {
	o, err := Parse([]string{"geo"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.CombineMethod() != GeometricMean {
		t.Fatalf("CombineMethod = %v, want GeometricMean", o.CombineMethod())
	}
}

func TestIncExcVarsAreMutuallyExclusive(t *testing.T) {
	if _, err := Parse([]string{"inc-vars=A,B", "exc-vars=C"}); err == nil {
		t.Fatal("expected an error when both inc-vars and exc-vars are set")
	}
}

func TestIncVarsParsesCommaList(t *testing.T) {
	o, err := Parse([]string{"inc-vars=MEAN_C3,SKEW_C3"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.IncVars["MEAN_C3"] || !o.IncVars["SKEW_C3"] {
		t.Fatalf("IncVars = %v, want MEAN_C3 and SKEW_C3", o.IncVars)
	}
}

func TestEquivParsesCommaList(t *testing.T) {
	o, err := Parse([]string{"equiv=C3,C4,O1"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(o.Equiv) != 3 || o.Equiv[1] != "C4" {
		t.Fatalf("Equiv = %v", o.Equiv)
	}
}

func TestBadNumericValueIsMalformedInput(t *testing.T) {
	if _, err := Parse([]string{"iter=notanumber"}); err == nil {
		t.Fatal("expected an error for a non-numeric iter value")
	}
}

func TestVerboseAndShapFlags(t *testing.T) {
	o, err := Parse([]string{"verbose", "SHAP", "epoch-SHAP"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.Verbose || !o.SHAP || !o.EpochSHAP {
		t.Fatalf("flags not all set: %+v", o)
	}
}
