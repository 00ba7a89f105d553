// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tombee/repopacker/internal/commands/shared"
	"github.com/tombee/repopacker/internal/jq"
	"github.com/tombee/repopacker/internal/pack"
	"github.com/tombee/repopacker/internal/tracing"
)

// metricsPrefix selects the engine's metric families.
const metricsPrefix = "repopacker_"

// PackResponse is the JSON output of a pack run.
type PackResponse struct {
	shared.JSONResponse
	Summary *pack.Summary `json:"summary"`
}

// report writes the run summary as jq output, JSON or text, followed by
// metrics when requested.
func (p *packer) report(ctx context.Context, summary *pack.Summary) error {
	w := p.summaryWriter()

	switch {
	case p.opts.jqExpr != "":
		if err := writeJQ(ctx, w, p.opts.jqExpr, summary); err != nil {
			return shared.NewFailedError("jq evaluation failed", err)
		}
	case shared.GetJSON():
		if err := shared.EmitJSON(w, PackResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "pack", Success: true},
			Summary:      summary,
		}); err != nil {
			return err
		}
	case !shared.GetQuiet():
		if err := writeText(w, summary, p.opts.detailed); err != nil {
			return err
		}
	}

	if p.opts.metrics {
		if err := tracing.WriteMetrics(w, prometheus.DefaultGatherer, metricsPrefix); err != nil {
			return shared.NewFailedError("failed to write metrics", err)
		}
	}
	return nil
}

// writeJQ prints each value the expression emits on its own line. Strings
// are printed raw.
func writeJQ(ctx context.Context, w io.Writer, expr string, summary *pack.Summary) error {
	results, err := jq.NewExecutor(0, 0).Execute(ctx, expr, summary)
	if err != nil {
		return err
	}
	for _, v := range results {
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}

func writeText(w io.Writer, summary *pack.Summary, detailed bool) error {
	styler := shared.NewStyler(shared.UseColor(w))

	fmt.Fprintln(w, styler.Header("Packed "+summary.Root))
	if detailed {
		for _, f := range summary.Files {
			fmt.Fprintln(w, "  "+styler.FileStatus(f))
		}
	}
	return summary.WriteText(w, false)
}
