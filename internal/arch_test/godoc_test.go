package arch_test

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/token"
	"strings"
	"testing"
)

// TestExportedSymbolsHaveGoDoc requires a doc comment starting with the
// symbol name on every exported type, function and method. Exported consts
// and vars need either a group comment or a comment on each spec.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()

	for _, p := range packages(t) {
		t.Run(p.name, func(t *testing.T) {
			t.Parallel()

			files := make([]*ast.File, 0, len(p.files))
			for _, path := range p.paths() {
				files = append(files, p.files[path])
			}
			d, err := doc.NewFromFiles(p.fset, files, internalPfx+p.name, doc.PreserveAST)
			if err != nil {
				t.Fatalf("doc.NewFromFiles: %v", err)
			}

			checkValues(t, p.fset, d.Consts)
			checkValues(t, p.fset, d.Vars)
			checkFuncs(t, p.fset, d.Funcs)
			for _, typ := range d.Types {
				if !strings.HasPrefix(typ.Doc, typ.Name) {
					t.Errorf("%s: exported type %s has no GoDoc comment", position(p.fset, typ.Decl), typ.Name)
				}
				checkValues(t, p.fset, typ.Consts)
				checkValues(t, p.fset, typ.Vars)
				checkFuncs(t, p.fset, typ.Funcs)
				checkFuncs(t, p.fset, typ.Methods)
			}
		})
	}
}

func checkFuncs(t *testing.T, fset *token.FileSet, funcs []*doc.Func) {
	t.Helper()
	for _, fn := range funcs {
		if !strings.HasPrefix(fn.Doc, fn.Name) {
			t.Errorf("%s: exported %s has no GoDoc comment", position(fset, fn.Decl), fn.Name)
		}
	}
}

func checkValues(t *testing.T, fset *token.FileSet, values []*doc.Value) {
	t.Helper()
	for _, v := range values {
		if strings.TrimSpace(v.Doc) != "" {
			continue
		}
		for _, spec := range v.Decl.Specs {
			vs := spec.(*ast.ValueSpec)
			if vs.Doc != nil || vs.Comment != nil {
				continue
			}
			for _, name := range vs.Names {
				if name.IsExported() {
					t.Errorf("%s: exported %s %s has no GoDoc comment",
						position(fset, vs), strings.ToLower(v.Decl.Tok.String()), name.Name)
				}
			}
		}
	}
}

func position(fset *token.FileSet, n ast.Node) string {
	pos := fset.Position(n.Pos())
	return fmt.Sprintf("%s:%d", rel(pos.Filename), pos.Line)
}
