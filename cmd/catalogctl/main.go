package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"media-catalog/internal/bundle"
	"media-catalog/internal/importer"
	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/record"
	"media-catalog/internal/startup"
	"media-catalog/internal/transcode"

	"github.com/google/uuid"
)

const defaultLibraryDir = "/library"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// CLI output should stay clean; warnings and up only
	logging.SetLevel(logging.LevelWarn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	libraryDir := os.Getenv("LIBRARY_DIR")
	if libraryDir == "" {
		libraryDir = defaultLibraryDir
	}

	lay := layout.New(libraryDir)
	if err := lay.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open library at %s: %v\n", libraryDir, err)
		fmt.Fprintln(os.Stderr, "Make sure LIBRARY_DIR is set correctly")
		os.Exit(1)
	}

	janitor := record.NewJanitor()
	store := record.NewStore(lay, nil, janitor)
	defer janitor.Flush()

	ok := false
	switch command {
	case "import":
		ok = runImport(ctx, store, os.Args[2:])
	case "export":
		ok = runExport(store, os.Args[2:])
	case "restore":
		ok = runRestore(ctx, store, os.Args[2:])
	case "list":
		ok = runList(store)
	case "delete":
		ok = runDelete(store, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", command)
		printUsage()
	}

	if !ok {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: catalogctl <command> [args]

Commands:
  import <file>...        Import media files into the library
  export <id> <out.zip>   Export one item as a zip package
  restore <bundle.zip>    Import a zip package into the library
  list                    List catalog items
  delete <id>             Delete an item and its artifacts

The library location is taken from LIBRARY_DIR (default /library).
Encoder configuration is taken from the same environment variables as
the server (FFMPEG_PATH, FFPROBE_PATH, TRANSCODE_AUDIO, ...).
`)
}

// newDispatcher builds the import pipeline from the server's environment
// variables.
func newDispatcher(store *record.Store) *importer.Dispatcher {
	encoderPath := envOr("FFMPEG_PATH", "ffmpeg")
	probePath := envOr("FFPROBE_PATH", "ffprobe")

	adapter := transcode.NewAdapter(encoderPath, os.Getenv("VOLNORM_CLAUSE"))
	prober := transcode.NewProber(probePath)
	sampler := transcode.NewFrameSampler(encoderPath,
		envOr("FRAME_SAMPLE_TEMPLATE", startup.DefaultSampleTemplate))

	config := importer.DefaultConfig()
	config.Audio.TranscodeEnabled = envOr("TRANSCODE_AUDIO", "true") == "true"
	config.Video.TranscodeEnabled = envOr("TRANSCODE_VIDEO", "false") == "true"

	return importer.NewDispatcher(
		importer.NewImageImporter(store, adapter, config),
		importer.NewAudioImporter(store, adapter, prober, config),
		importer.NewVideoImporter(store, adapter, prober, sampler, config),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runImport(ctx context.Context, store *record.Store, args []string) bool {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: catalogctl import <file>...")
		return false
	}

	dispatcher := newDispatcher(store)
	ok := true
	for _, source := range args {
		rec, err := dispatcher.Import(ctx, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", source, err)
			ok = false
			continue
		}
		fmt.Printf("OK      %s -> %s (%s)\n", source, rec.ID, rec.Kind)
	}
	return ok
}

func runExport(store *record.Store, args []string) bool {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: catalogctl export <id> <out.zip>")
		return false
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", args[0])
		return false
	}

	rec, err := store.LoadByID(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: item %s not found: %v\n", id, err)
		return false
	}

	out, err := os.Create(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create %s: %v\n", args[1], err)
		return false
	}

	provider := bundle.NewProvider(store, nil)
	if err := provider.Export([]record.MediaRecord{rec}, out); err != nil {
		_ = out.Close()
		_ = os.Remove(args[1])
		fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
		return false
	}
	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
		return false
	}

	fmt.Printf("Exported %s to %s\n", id, args[1])
	return true
}

func runRestore(ctx context.Context, store *record.Store, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: catalogctl restore <bundle.zip>")
		return false
	}

	provider := bundle.NewProvider(store, nil)
	result, err := provider.ImportFile(ctx, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	for _, item := range result.Items {
		if item.Err != nil {
			fmt.Printf("%-8s %s (%v)\n", item.Outcome, item.ID, item.Err)
		} else {
			fmt.Printf("%-8s %s\n", item.Outcome, item.ID)
		}
	}
	fmt.Printf("created=%d updated=%d skipped=%d failed=%d\n",
		result.Count(bundle.OutcomeCreated),
		result.Count(bundle.OutcomeUpdated),
		result.Count(bundle.OutcomeSkipped),
		result.Count(bundle.OutcomeFailed))

	return result.Count(bundle.OutcomeFailed) == 0
}

func runList(store *record.Store) bool {
	records, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	for _, rec := range records {
		fmt.Printf("%s  %-5s  %10d  %s\n", rec.ID, rec.Kind, rec.SizeBytes, rec.Name)
	}
	fmt.Printf("%d items\n", len(records))
	return true
}

func runDelete(store *record.Store, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: catalogctl delete <id>")
		return false
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", args[0])
		return false
	}

	rec, err := store.LoadByID(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: item %s not found: %v\n", id, err)
		return false
	}

	if err := store.Delete(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: delete failed: %v\n", err)
		return false
	}

	fmt.Printf("Deleted %s (%s)\n", id, rec.Name)
	return true
}
