package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/rksledger/internal/ledger"
)

//go:embed policy_schema.cue
var policySchema []byte

// LoadPolicy reads the organization policy from a CUE (or JSON) file. The
// file is unified with the embedded #Policy schema, which supplies defaults
// and rejects unknown fields and values. An empty path yields the defaults.
func LoadPolicy(path string) (ledger.Policy, error) {
	var src []byte
	if path != "" {
		var err error
		if src, err = os.ReadFile(path); err != nil {
			return ledger.Policy{}, fmt.Errorf("read policy: %w", err)
		}
	}
	return ParsePolicy(src, path)
}

// ParsePolicy is LoadPolicy for in-memory source. filename is used in error
// positions only.
func ParsePolicy(src []byte, filename string) (ledger.Policy, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(policySchema, cue.Filename("policy_schema.cue"))
	if err := schema.Err(); err != nil {
		return ledger.Policy{}, fmt.Errorf("compile policy schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Policy"))

	if filename == "" {
		filename = "policy.cue"
	}
	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return ledger.Policy{}, fmt.Errorf("parse policy: %w", err)
	}

	value := def.Unify(user)
	if err := value.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return ledger.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}

	var p ledger.Policy
	if err := value.Decode(&p); err != nil {
		return ledger.Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return ledger.Policy{}, err
	}
	return p, nil
}
