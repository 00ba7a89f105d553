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

package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestProvider_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	provider, err := NewProvider("test-service", "1.0.0", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	_, span := provider.TracerProvider().Tracer("test").Start(context.Background(), "linelimit.ApplyLineLimit")
	span.SetAttributes(attribute.String("language", "go"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "linelimit.ApplyLineLimit", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "test-service", service)
}

func TestConsoleProvider_WritesJSON(t *testing.T) {
	var buf bytes.Buffer

	provider, err := NewConsoleProvider(&buf, "repopacker", "dev")
	require.NoError(t, err)

	_, span := provider.TracerProvider().Tracer("test").Start(context.Background(), "linelimit.parse")
	span.End()
	require.NoError(t, provider.ForceFlush(context.Background()))
	require.NoError(t, provider.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name": "linelimit.parse"`)
	assert.True(t, strings.HasPrefix(out, "{"))
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	files := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repopacker_test_files_total",
		Help: "Files seen.",
	}, []string{"language"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "Other."})
	reg.MustRegister(files, other)
	files.WithLabelValues("go").Add(3)
	other.Inc()

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, reg, "repopacker_"))
	out := buf.String()
	assert.Contains(t, out, "# TYPE repopacker_test_files_total counter")
	assert.Contains(t, out, `repopacker_test_files_total{language="go"} 3`)
	assert.NotContains(t, out, "other_total")

	buf.Reset()
	require.NoError(t, WriteMetrics(&buf, reg, ""))
	assert.Contains(t, buf.String(), "other_total 1")
}
