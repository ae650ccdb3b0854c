package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blogbook <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  index      Write the content index of every top-level folder")
	fmt.Fprintln(w, "  convert    Render indexed documents to PDF and merge them")
	fmt.Fprintln(w, "  build      Index, aggregate, convert and record checksums")
	fmt.Fprintln(w, "  checksum   Record document checksums and report changes")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'blogbook help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printIndexUsage prints usage for the index command.
func printIndexUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blogbook index [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Walk each top-level folder of root, validate it and write its index.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  root    Content directory (default: config content.root)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Index:")
	fmt.Fprintln(w, "      --root-index <path>   Also write the aggregated index")
	fmt.Fprintln(w, "      --index-name <name>   Per-folder index file name (default: index.json)")
	fmt.Fprintln(w, "      --watch               Regenerate when content changes")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period in watch mode (default: 300ms)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

func printConvertOptions(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --index <path>        Index artifact to convert")
	fmt.Fprintln(w, "      --content <dir>       Content root the index paths resolve against")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: pdf)")
	fmt.Fprintln(w, "      --merged <name>       Merged PDF name (default: All-Blogs-Merged.pdf)")
	fmt.Fprintln(w, "      --html                Also write the rendered HTML")
	fmt.Fprintln(w, "      --no-clean            Keep existing output directory contents")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics textfile")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Documents per chunk (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (default: 90s)")
	fmt.Fprintln(w, "      --diagram-timeout <d> Wait for diagrams (default: 10s, 0 = skip)")
	fmt.Fprintln(w, "      --raw-html            Pass inline HTML through")
	fmt.Fprintln(w, "      --style <name>        Stylesheet name")
	fmt.Fprintln(w, "      --template <name>     Page template name")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table of Contents:")
	fmt.Fprintln(w, "      --toc-title <s>       TOC heading text")
	fmt.Fprintln(w, "      --toc-min-depth <n>   Min heading depth (1-6)")
	fmt.Fprintln(w, "      --toc-max-depth <n>   Max heading depth (1-6)")
	fmt.Fprintln(w, "      --toc-marker-only     Only render where [[toc]] appears")
	fmt.Fprintln(w, "      --no-toc              Disable table of contents")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blogbook convert [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every document of an index to PDF, then merge them in index order.")
	fmt.Fprintln(w, "Without --index the content root is walked directly.")
	fmt.Fprintln(w)
	printConvertOptions(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blogbook build [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write folder indexes, aggregate them, convert and record checksums.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Index:")
	fmt.Fprintln(w, "      --root-index <path>   Aggregated index (default: <root>/all-blogs-index.json)")
	fmt.Fprintln(w)
	printConvertOptions(w)
}

// printChecksumUsage prints usage for the checksum command.
func printChecksumUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blogbook checksum [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Digest every document under root, report changes and save the store.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --store <path>        Checksum store (default: .blog-checksum.json)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "index":
		printIndexUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "build":
		printBuildUsage(env.Stdout)
	case "checksum":
		printChecksumUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: blogbook doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that a browser is available and the environment can render.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: blogbook version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: blogbook help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
