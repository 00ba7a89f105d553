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

/*
Package tracing wires OpenTelemetry tracing and Prometheus metric output for
the repopacker commands.

The line-limit engine records spans through whatever trace.TracerProvider it
is given and counts its work in package-level Prometheus collectors. This
package supplies the provider used by `repopacker pack --trace`, which
prints finished spans as JSON, and the text dump behind `--metrics`.

	provider, err := tracing.NewConsoleProvider(os.Stderr, "repopacker", version)
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	engine := linelimit.New(linelimit.WithTracerProvider(provider.TracerProvider()))
*/
package tracing
