package harness

import "strconv"

// statusRule is one result-schema variant in the resolution chain. The
// harness result format has changed across versions without a schema tag to
// dispatch on, so rules sniff for the fields each variant carries.
type statusRule struct {
	name    string
	applies func(payload map[string]any) bool
	resolve func(payload map[string]any) Verdict
}

// statusChain is evaluated in order; the first applicable rule decides the
// verdict and later rules are not consulted. New schema variants are handled
// by appending a rule, never by editing existing ones.
var statusChain = []statusRule{
	{
		name: "passed",
		applies: func(p map[string]any) bool {
			v, ok := p["passed"]
			return ok && v != nil
		},
		resolve: func(p map[string]any) Verdict {
			return verdictFromBool(asBool(p["passed"]))
		},
	},
	{
		name: "score",
		applies: func(p map[string]any) bool {
			_, ok := p["score"]
			return ok
		},
		resolve: func(p map[string]any) Verdict {
			return verdictFromBool(asFloat(p["score"]) > 0)
		},
	},
	{
		name: "verifier-passed",
		applies: func(p map[string]any) bool {
			vr, ok := verifierResult(p)
			if !ok {
				return false
			}
			_, ok = vr["passed"]
			return ok
		},
		resolve: func(p map[string]any) Verdict {
			vr, _ := verifierResult(p)
			return verdictFromBool(asBool(vr["passed"]))
		},
	},
	{
		name: "verifier-reward",
		applies: func(p map[string]any) bool {
			vr, ok := verifierResult(p)
			if !ok {
				return false
			}
			_, ok = vr["rewards"]
			return ok
		},
		resolve: func(p map[string]any) Verdict {
			vr, _ := verifierResult(p)
			rewards, _ := vr["rewards"].(map[string]any)
			// A missing reward defaults to 0, i.e. failed.
			return verdictFromBool(asFloat(rewards["reward"]) > 0)
		},
	},
}

// ResolveVerdict derives the pass/fail verdict for a trial payload. It is a
// pure function of the payload: re-resolving the same payload always yields
// the same verdict.
func ResolveVerdict(payload map[string]any) Verdict {
	for _, rule := range statusChain {
		if rule.applies(payload) {
			return rule.resolve(payload)
		}
	}
	return VerdictUnknown
}

func verifierResult(p map[string]any) (map[string]any, bool) {
	vr, ok := p["verifier_result"].(map[string]any)
	return vr, ok && vr != nil
}

func verdictFromBool(passed bool) Verdict {
	if passed {
		return VerdictPassed
	}
	return VerdictFailed
}

// asFloat coerces a decoded JSON value to a float64. Values that do not
// coerce yield 0 rather than an error; the chain's defaults absorb them.
func asFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// asBool coerces a decoded JSON value to a bool, defaulting to false.
func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}
