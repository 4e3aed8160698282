package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/basuapi/adaptergen/internal/toolrunner"
)

// routesSentinel prefixes the JSON payload so host console output during
// require() cannot be mistaken for routes.
const routesSentinel = "__ADAPTERGEN_ROUTES__"

// nodeScript runs as `node -e <script> <abs file> <member>`.
var nodeScript = collectScript + `
const __mod = require(process.argv[1]);
Promise.resolve()
  .then(function () { return __adaptergenResolve(__mod, process.argv[2]); })
  .then(function (value) { return __adaptergenUnwrap(value); })
  .then(function (value) {
    process.stdout.write("\n" + "` + routesSentinel + `" + JSON.stringify(value == null ? [] : value) + "\n");
  })
  .catch(function (err) {
    process.stderr.write(String(err && err.stack ? err.stack : err) + "\n");
    process.exit(1);
  });
`

// NodeProvider loads routes by requiring the compiled entry file with node.
type NodeProvider struct {
	workDir string
	runner  *toolrunner.Runner
}

// NewNodeProvider creates a provider that shells out to node in workDir.
func NewNodeProvider(workDir string, runner *toolrunner.Runner) *NodeProvider {
	if runner == nil {
		runner = toolrunner.NewRunner(workDir)
	}
	return &NodeProvider{
		workDir: workDir,
		runner:  runner.WithWorkDir(workDir),
	}
}

// Routes requires the entry file and decodes the member's route list.
func (p *NodeProvider) Routes(ctx context.Context, entry EntryPoint) ([]Entry, error) {
	result, err := p.runner.Node(ctx, "-e", nodeScript, entry.Abs(p.workDir), entry.Member)
	if err != nil {
		return nil, err
	}
	return decodeNodeOutput(result.Stdout)
}

func decodeNodeOutput(stdout string) ([]Entry, error) {
	idx := strings.LastIndex(stdout, routesSentinel)
	if idx < 0 {
		return nil, fmt.Errorf("node produced no route payload")
	}

	payload := stdout[idx+len(routesSentinel):]
	if nl := strings.IndexByte(payload, '\n'); nl >= 0 {
		payload = payload[:nl]
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode routes from node: %w", err)
	}
	return entries, nil
}
