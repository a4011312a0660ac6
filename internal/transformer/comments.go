package transformer

import (
	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// commentStripper removes every attached comment during Preparing when
// configured to do so, grounded on the teacher's
// transformer.NewCommentStripperVisitor pass that runs as an early,
// independent step ahead of the heavier obfuscation passes.
type commentStripper struct {
	enabled bool
}

// NewCommentStripper returns the CommentStripper transformer, active only
// when cfg.Obfuscation.Comments.Strip is set.
func NewCommentStripper(cfg *config.Config) NodeTransformer {
	return &commentStripper{enabled: cfg.Obfuscation.Comments.Strip}
}

func (*commentStripper) Name() Name           { return CommentStripper }
func (*commentStripper) Dependencies() []Name { return nil }

func (c *commentStripper) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != stage.Preparing || !c.enabled {
		return visitor.Visitor{}, false
	}
	return visitor.Visitor{
		Enter: func(n ast.Node, _ ast.Node) visitor.Result {
			if len(n.Base().Comments) > 0 {
				n.Base().Comments = nil
			}
			return visitor.SameResult()
		},
	}, true
}

func (*commentStripper) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (*commentStripper) Finalize(stage.NodeStage, *ast.Program) error { return nil }
