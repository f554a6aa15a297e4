package bindgen

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// DefaultPackage is the package name of the generated module.
const DefaultPackage = "ayam"

// Options control code generation.
type Options struct {
	Package     string
	Allowlist   Allowlist
	Policy      EnumPolicy
	ArchiveName string
	// RuntimeLink lists extra libraries for the generated LDFLAGS. Empty by
	// default; nothing is added per platform.
	RuntimeLink []string
	// OutDir is where the module and archive live; include paths are made
	// relative to it with ${SRCDIR} when possible.
	OutDir   string
	Umbrella string
}

// DefaultOptions returns the fixed configuration for the kernel.
func DefaultOptions(outDir, umbrella, archive string) Options {
	return Options{
		Package:     DefaultPackage,
		Allowlist:   DefaultAllowlist(),
		Policy:      EnumClosedVariant,
		ArchiveName: archive,
		OutDir:      outDir,
		Umbrella:    umbrella,
	}
}

func (o Options) validate() error {
	if !ValidPackageName(o.Package) {
		return fmt.Errorf("invalid package name %q", o.Package)
	}
	if err := o.Policy.Validate(); err != nil {
		return err
	}
	if o.ArchiveName == "" {
		return errors.New("archive name is empty")
	}
	if o.Umbrella == "" {
		return errors.New("umbrella header is empty")
	}
	return nil
}

// Generate builds the binding module from parsed declarations. Declarations are
// visited in parse order; the first declaration of a name wins.
func Generate(hdr *clangast.Header, prof *layout.Profile, opts Options) (*Module, error) {
	if err := opts.validate(); err != nil {
		return nil, ferrors.ValidationError("invalid binding options").WithCause(err).Build()
	}
	g := &generation{
		opts:  opts,
		names: newNamer(),
		types: newTypeMap(),
		seen:  make(map[string]bool),
	}
	for _, d := range hdr.Decls {
		g.add(d)
	}

	src, err := render(g.frame(prof))
	if err != nil {
		return nil, ferrors.InternalError("cannot render bindings").WithCause(err).Build()
	}
	return &Module{
		Package:      opts.Package,
		Source:       src,
		Bindings:     g.bindings,
		Skipped:      g.skipped,
		Headers:      dependencyHeaders(hdr.Files, prof, opts.Umbrella),
		ClangVersion: hdr.ClangVersion,
	}, nil
}

// dependencyHeaders keeps the parsed files that live next to the umbrella header
// or in an include directory. System headers and the umbrella itself are dropped.
func dependencyHeaders(files []string, prof *layout.Profile, umbrella string) []string {
	umbrella = filepath.Clean(umbrella)
	roots := append([]string{filepath.Dir(umbrella)}, prof.IncludePaths()...)
	var out []string
	for _, f := range files {
		if !filepath.IsAbs(f) {
			continue
		}
		f = filepath.Clean(f)
		if f == umbrella || slices.Contains(out, f) {
			continue
		}
		for _, root := range roots {
			if within(root, f) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func within(dir, file string) bool {
	rel, err := filepath.Rel(dir, file)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type generation struct {
	opts     Options
	names    *namer
	types    *typeMap
	seen     map[string]bool
	items    []item
	bindings []Binding
	skipped  []Skipped
}

// claim marks a C name as bound; false when an earlier declaration owns it.
func (g *generation) claim(key string) bool {
	if g.seen[key] {
		return false
	}
	g.seen[key] = true
	return true
}

func (g *generation) skip(d *clangast.Decl, reason string) {
	slog.Debug("Skipping declaration", logfields.Symbol(d.Name), logfields.Kind(d.Kind.String()), logfields.Reason(reason))
	g.skipped = append(g.skipped, Skipped{Kind: d.Kind, Name: d.Name, Reason: reason})
}

func (g *generation) emit(d *clangast.Decl, goName string, it item) {
	it.GoName = goName
	g.items = append(g.items, it)
	g.bindings = append(g.bindings, Binding{Kind: d.Kind, CName: d.Name, GoName: goName, File: d.File})
}

func (g *generation) add(d *clangast.Decl) {
	allow := g.opts.Allowlist
	switch d.Kind {
	case clangast.KindFunction:
		if allow.Function(d.Name) && g.claim(d.Name) {
			g.addFunction(d)
		}
	case clangast.KindVar:
		if allow.Var(d.Name) && g.claim(d.Name) {
			g.addVar(d)
		}
	case clangast.KindTypedef:
		if allow.Type(d.Name) && g.claim(d.Name) {
			g.addTypedef(d)
		}
	case clangast.KindRecord:
		if !d.Anonymous() && allow.Type(d.Name) && g.claim(d.Tag+" "+d.Name) {
			goName := g.names.forC(d.Name)
			target := "C." + d.Tag + "_" + d.Name
			g.types.aliases[d.Tag+" "+d.Name] = goName
			g.emit(d, goName, item{Kind: itemAlias, CSpelling: d.Tag + " " + d.Name, Target: target})
		}
	case clangast.KindEnum:
		if !d.Anonymous() && allow.Type(d.Name) && g.claim("enum "+d.Name) {
			g.addVariant(d, d.Name, "enum "+d.Name, "C.enum_"+d.Name, d.Enumerators)
		}
	}
}

func (g *generation) addTypedef(d *clangast.Decl) {
	if enum := d.Aliased; enum != nil && enum.Kind == clangast.KindEnum {
		if v, ok := g.types.variants["enum "+enum.Name]; ok && enum.Name != "" {
			goName := g.names.forC(d.Name)
			g.types.variants[d.Name] = goType{Expr: goName, Conv: "C." + d.Name}
			g.emit(d, goName, item{Kind: itemAlias, CSpelling: d.Name, Target: v.Expr})
			return
		}
		g.addVariant(d, d.Name, d.Name, "C."+d.Name, enum.Enumerators)
		return
	}
	goName := g.names.forC(d.Name)
	g.types.aliases[d.Name] = goName
	g.emit(d, goName, item{Kind: itemAlias, CSpelling: d.Name, Target: "C." + d.Name})
}

func (g *generation) addVariant(d *clangast.Decl, cName, spelling, cgoType string, values []clangast.Enumerator) {
	if len(values) == 0 {
		g.skip(d, "enum has no enumerators")
		return
	}
	underlying, err := underlyingType(values)
	if err != nil {
		g.skip(d, err.Error())
		return
	}
	goName := g.names.forC(cName)
	v := &variant{CType: cgoType, Underlying: underlying, Raw: "int64"}
	if underlying == "uint64" {
		v.Raw = "uint64"
	}
	distinct := make(map[int64]bool)
	for _, e := range values {
		m := member{Name: g.names.take(exportFirst(e.Name)), CName: e.Name, Value: e.Literal()}
		v.Members = append(v.Members, m)
		if !distinct[e.Value] {
			distinct[e.Value] = true
			v.Distinct = append(v.Distinct, m)
		}
	}
	v.ValuesFunc = g.names.take(goName + "Values")
	v.FromValueFunc = g.names.take(goName + "FromValue")

	g.types.variants[spelling] = goType{Expr: goName, Conv: cgoType}
	g.emit(d, goName, item{Kind: itemVariant, CSpelling: spelling, Variant: v})
}

func (g *generation) addFunction(d *clangast.Decl) {
	if d.Variadic {
		g.skip(d, "variadic function")
		return
	}
	type mapped struct {
		name string
		t    goType
	}
	params := make([]mapped, 0, len(d.Params))
	for _, p := range d.Params {
		t, err := g.types.resolve(p.Type, posParam)
		if err != nil {
			g.skip(d, fmt.Sprintf("parameter %s: %v", p.Name, err))
			return
		}
		params = append(params, mapped{name: p.Name, t: t})
	}
	result, err := g.types.resolve(d.Result, posResult)
	if err != nil {
		g.skip(d, fmt.Sprintf("result: %v", err))
		return
	}

	goName := g.names.forC(d.Name)
	sig := make([]string, 0, len(params))
	args := make([]string, 0, len(params))
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		name := g.names.paramName(p.name)
		for seen[name] {
			name += "_"
		}
		seen[name] = true
		sig = append(sig, name+" "+p.t.Expr)
		if p.t.Conv != "" {
			name = p.t.Conv + "(" + name + ")"
		}
		args = append(args, name)
	}
	call := "C." + d.Name + "(" + strings.Join(args, ", ") + ")"
	if result.Conv != "" {
		call = result.Expr + "(" + call + ")"
	}
	g.emit(d, goName, item{
		Kind:   itemFunc,
		CName:  d.Name,
		Params: strings.Join(sig, ", "),
		Result: result.Expr,
		Call:   call,
	})
}

func (g *generation) addVar(d *clangast.Decl) {
	if d.StorageClass == "static" {
		g.skip(d, "static variable")
		return
	}
	t, err := g.types.resolve(d.Type, posVar)
	if err != nil {
		g.skip(d, err.Error())
		return
	}
	goName := g.names.forC(d.Name)
	g.emit(d, goName, item{Kind: itemVar, CName: d.Name, Result: "*" + t.Expr})
}

// frame collects the file-level parts of the module.
func (g *generation) frame(prof *layout.Profile) frame {
	umbrellaDir := filepath.Dir(g.opts.Umbrella)
	cflags := []string{"-I" + g.srcdirPath(umbrellaDir)}
	for _, dir := range prof.IncludePaths() {
		cflags = append(cflags, "-I"+g.srcdirPath(dir))
	}
	cflags = append(cflags, prof.Defines().Flags()...)

	ldflags := []string{"-L${SRCDIR}", "-l" + g.opts.ArchiveName}
	for _, lib := range g.opts.RuntimeLink {
		ldflags = append(ldflags, "-l"+lib)
	}

	f := frame{
		Package: g.opts.Package,
		Source:  filepath.Base(g.opts.Umbrella),
		CFlags:  strings.Join(cflags, " "),
		LDFlags: strings.Join(ldflags, " "),
		Include: filepath.Base(g.opts.Umbrella),
		Items:   g.items,
	}
	var needStrconv, needUnsafe bool
	for _, it := range g.items {
		if it.Kind == itemVariant {
			needStrconv = true
		}
		if strings.Contains(it.Params, "unsafe.Pointer") || strings.Contains(it.Result, "unsafe.Pointer") {
			needUnsafe = true
		}
	}
	if needStrconv {
		f.Imports = append(f.Imports, "strconv")
	}
	if needUnsafe {
		f.Imports = append(f.Imports, "unsafe")
	}
	return f
}

// srcdirPath expresses dir relative to the output directory through ${SRCDIR},
// falling back to the absolute path.
func (g *generation) srcdirPath(dir string) string {
	if g.opts.OutDir == "" {
		return filepath.ToSlash(dir)
	}
	rel, err := filepath.Rel(g.opts.OutDir, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	if rel == "." {
		return "${SRCDIR}"
	}
	return "${SRCDIR}/" + filepath.ToSlash(rel)
}
