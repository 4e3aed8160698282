package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/buke/quickjs-go"
	esbuild "github.com/evanw/esbuild/pkg/api"
)

// embeddedPrelude stands in for the node globals a compiled host module touches at load time.
var embeddedPrelude = `if(typeof console==="undefined"){globalThis.console={log:function(){},info:function(){},warn:function(){},error:function(){},debug:function(){}};}` +
	`if(typeof process==="undefined"){globalThis.process={env:{},argv:[],cwd:function(){return "/";}};}` +
	`if(typeof require==="undefined"){globalThis.require=function(name){throw new Error("module '"+name+"' is not available to the embedded loader, use --loader node");};}` +
	collectScript

// embeddedFooter is the completion value of the evaluated script.
const embeddedFooter = `JSON.stringify(globalThis.__adaptergenRoutes==null?[]:globalThis.__adaptergenRoutes)`

// EmbeddedProvider bundles the entry file with esbuild and evaluates it in
// QuickJS, so routes can be read without a node installation. Exports that
// resolve asynchronously are not supported.
type EmbeddedProvider struct {
	workDir string
}

// NewEmbeddedProvider creates a provider resolving entry files against workDir.
func NewEmbeddedProvider(workDir string) *EmbeddedProvider {
	return &EmbeddedProvider{workDir: workDir}
}

// Routes bundles, evaluates and decodes the member's route list.
func (p *EmbeddedProvider) Routes(ctx context.Context, entry EntryPoint) ([]Entry, error) {
	code, err := p.bundle(entry)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := evaluate(code)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", entry.String(), err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("decode routes from %s: %w", entry.String(), err)
	}
	return entries, nil
}

// bundle produces a self-contained script whose completion value is the JSON route list.
func (p *EmbeddedProvider) bundle(entry EntryPoint) (string, error) {
	file, _ := json.Marshal(entry.Abs(p.workDir))
	member, _ := json.Marshal(entry.Member)

	stdin := fmt.Sprintf(`import * as __mod from %s;
var __value = __adaptergenResolve(__mod, %s);
if (__value != null && typeof __value.then === "function") {
  throw new Error("asynchronous route exports need --loader node");
}
globalThis.__adaptergenRoutes = __value;
`, file, member)

	result := esbuild.Build(esbuild.BuildOptions{
		Stdin: &esbuild.StdinOptions{
			Contents:   stdin,
			ResolveDir: p.workDir,
			Sourcefile: "adaptergen-entry.js",
			Loader:     esbuild.LoaderJS,
		},
		Bundle:        true,
		Write:         false,
		Format:        esbuild.FormatIIFE,
		Platform:      esbuild.PlatformNode,
		Target:        esbuild.ES2020,
		LogLevel:      esbuild.LogLevelSilent,
		LegalComments: esbuild.LegalCommentsNone,
		Banner:        map[string]string{"js": embeddedPrelude},
		Footer:        map[string]string{"js": embeddedFooter},
	})

	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		location := "unknown"
		if msg.Location != nil {
			location = fmt.Sprintf("%s:%d", msg.Location.File, msg.Location.Line)
		}
		return "", fmt.Errorf("bundle %s: %s (at %s)", entry.String(), msg.Text, location)
	}
	if len(result.OutputFiles) == 0 {
		return "", fmt.Errorf("bundle %s: no output", entry.String())
	}

	return string(result.OutputFiles[0].Contents), nil
}

// evaluate runs code in a fresh QuickJS context and returns its completion value.
func evaluate(code string) (string, error) {
	// QuickJS runtimes are bound to the creating thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rt := quickjs.NewRuntime()
	defer rt.Close()

	qctx := rt.NewContext()
	defer qctx.Close()

	res := qctx.Eval(code)
	defer res.Free()

	if res.IsException() {
		return "", qctx.Exception()
	}

	return res.String(), nil
}
