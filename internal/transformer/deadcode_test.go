package transformer

import (
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/traversal"
)

func programWithStatements(n int) *ast.Program {
	body := make([]ast.Node, n)
	for i := range body {
		body[i] = &ast.ExpressionStatement{Expression: &ast.NumericLiteral{Value: float64(i)}}
	}
	return &ast.Program{Body: body}
}

// TestDeadCodeInjector_MaxRateTerminates guards against the splice-vs-wrap
// regression: at InjectionRate=100 every opportunity fires, so a
// self-embedding replacement would recurse without bound. Splicing into
// the statement list must still terminate and must not touch the original
// statement nodes.
func TestDeadCodeInjector_MaxRateTerminates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.DeadCode.Enabled = true
	cfg.Obfuscation.DeadCode.InjectionRate = 100

	injector := NewDeadCodeInjector(cfg, mrand.New(mrand.NewSource(1)))
	v, ok := injector.NodeVisitor(stage.DeadCodeInjection)
	require.True(t, ok)

	program := programWithStatements(3)
	original := append([]ast.Node{}, program.Body...)

	done := make(chan *ast.Program, 1)
	go func() {
		result := traversal.Replace(program, v)
		done <- result.(*ast.Program)
	}()

	select {
	case result := <-done:
		// Every original statement must still be present, exactly once,
		// interleaved with injected if(false) branches rather than
		// wrapped around itself.
		var kept []ast.Node
		for _, stmt := range result.Body {
			for _, orig := range original {
				if stmt == orig {
					kept = append(kept, stmt)
				}
			}
		}
		assert.Equal(t, original, kept)
		assert.Greater(t, len(result.Body), len(original))
	case <-time.After(5 * time.Second):
		t.Fatal("traversal.Replace did not terminate at InjectionRate=100")
	}
}

// TestDeadCodeInjector_DisabledProducesNoVisitor confirms the transformer
// stays inactive outside its own stage or when turned off.
func TestDeadCodeInjector_DisabledProducesNoVisitor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Obfuscation.DeadCode.Enabled = false
	injector := NewDeadCodeInjector(cfg, mrand.New(mrand.NewSource(1)))

	_, ok := injector.NodeVisitor(stage.DeadCodeInjection)
	assert.False(t, ok)

	cfg.Obfuscation.DeadCode.Enabled = true
	injector = NewDeadCodeInjector(cfg, mrand.New(mrand.NewSource(1)))
	_, ok = injector.NodeVisitor(stage.Preparing)
	assert.False(t, ok)
}
