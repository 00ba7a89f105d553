package truncate

// newDartStrategy has no grammar and always runs the textual path.
func newDartStrategy() *structural {
	return &structural{
		id:       "dart",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/"},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*(?:import|export|part|library)\b`,
			),
			openers: mustCompileAll(
				`^\s*(?:(?:abstract|base|final|sealed|interface|mixin)\s+)*(?:class|mixin|enum|extension|typedef)\b`,
				`^\s*(?:(?:static|late)\s+)*(?:const|final|var)\s+\w+`,
			),
			functions: mustCompileAll(cStyleFunction),
			footer: mustCompileAll(
				`^(?:Future<void>|void)\s+main\s*\(`,
				`^main\s*\(`,
			),
			decorator:   re(annotationLine),
			exprBody:    re(`\)\s*(?:async\s*)?=>`),
			control:     re(cStyleControl),
			exception:   re(`\b(?:try|catch|throw|rethrow|finally|on\s+\w+\s+catch)\b`),
			concurrency: re(`\bawait\b|\bFuture\.wait\b|\bIsolate\.|\bCompleter\b|\bStreamController\b`),
			asyncMarker: re(`\basync\*?|\bsync\*`),
			generic:     re(`\w\s*<[^<>()]+>\s*\(`),
			heavy:       re(`\)\s*\.(?:map|where|fold|expand|reduce)\(`),
		},
	}
}
