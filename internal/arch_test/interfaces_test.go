package arch_test

import (
	"go/ast"
	"testing"
)

// allowedColocations names interfaces that may share a package with a type
// implementing them, keyed by package.
var allowedColocations = map[string]map[string]bool{}

// methodSets maps each named type declared in p to its method names.
func methodSets(p *pkgInfo) map[string]map[string]bool {
	sets := make(map[string]map[string]bool)
	for _, f := range p.files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
				continue
			}
			expr := fd.Recv.List[0].Type
			if star, ok := expr.(*ast.StarExpr); ok {
				expr = star.X
			}
			ident, ok := expr.(*ast.Ident)
			if !ok {
				continue
			}
			if sets[ident.Name] == nil {
				sets[ident.Name] = make(map[string]bool)
			}
			sets[ident.Name][fd.Name.Name] = true
		}
	}
	return sets
}

// interfaces maps each interface declared in p to its method names.
func interfaces(p *pkgInfo) map[string][]string {
	out := make(map[string][]string)
	for _, f := range p.files {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			iface, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				return false
			}
			var methods []string
			for _, m := range iface.Methods.List {
				for _, name := range m.Names {
					methods = append(methods, name.Name)
				}
			}
			out[ts.Name.Name] = methods
			return false
		})
	}
	return out
}

// TestInterfacePlacement flags interfaces declared next to a type whose
// methods already satisfy them by name. Interfaces belong to their consumers.
func TestInterfacePlacement(t *testing.T) {
	t.Parallel()

	for _, p := range packages(t) {
		sets := methodSets(p)
		for iface, methods := range interfaces(p) {
			if len(methods) == 0 || allowedColocations[p.name][iface] {
				continue
			}
			for typ, set := range sets {
				if hasAll(set, methods) {
					t.Errorf("interface %s defined in %s but %s in the same package implements it; move it to the consumer",
						iface, p.name, typ)
				}
			}
		}
	}
}

func hasAll(set map[string]bool, methods []string) bool {
	for _, m := range methods {
		if !set[m] {
			return false
		}
	}
	return true
}

// TestLoopDeclaresItsCollaborators checks the debate loop owns the
// interfaces it consumes.
func TestLoopDeclaresItsCollaborators(t *testing.T) {
	t.Parallel()

	for _, p := range packages(t) {
		if p.name != "loop" {
			continue
		}
		declared := interfaces(p)
		for _, name := range []string{"Backend", "Recorder", "UI", "Prompter"} {
			if len(declared[name]) == 0 {
				t.Errorf("loop does not declare interface %s", name)
			}
		}
	}
}
