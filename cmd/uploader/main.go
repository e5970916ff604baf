package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/infrastructure/processor"
	"github.com/andreyxaxa/Photo-Intake/internal/uploader"
	"github.com/spf13/cobra"
)

type options struct {
	server    string
	email     string
	name      string
	project   string
	threshold int64
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "uploader [files...]",
		Short: "Submit a batch of photos",
		Long: styleTitle.Render("uploader") + " - photo submission client\n\n" +
			"Compresses oversized images, keeps at most 33 of them and posts\n" +
			"the batch with your contact details as one submission.\n\n" +
			"Examples:\n" +
			"  uploader --email jane@example.com --name Jane --project Harbor *.jpg",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), opts, args)
			if err != nil {
				fmt.Fprintln(os.Stderr, formatError(err.Error()))
			}

			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "intake service base URL")
	f.StringVar(&opts.email, "email", "", "contact email")
	f.StringVar(&opts.name, "name", "", "full name")
	f.StringVar(&opts.project, "project", "", "project name")
	f.Int64Var(&opts.threshold, "threshold", 5*1024*1024, "compress files larger than this many bytes")

	for _, required := range []string{"email", "name", "project"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}

func run(ctx context.Context, opts *options, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	info := entity.UserInfo{Email: opts.email, Name: opts.name, Project: opts.project}
	if !info.Valid() {
		return errors.New("email, name and project must not be blank")
	}

	// 1. read
	files := make([]uploader.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, uploader.File{
			Name:        filepath.Base(p),
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}

	// 2. select and compress
	files, dropped := uploader.Select(files, uploader.MaxFiles)
	if dropped > 0 {
		fmt.Println(formatWarning(fmt.Sprintf("%d files skipped (not images or over the limit of %d)", dropped, uploader.MaxFiles)))
	}
	if len(files) == 0 {
		return errors.New("no images to upload")
	}

	files = uploader.Prepare(files, processor.New(processor.Threshold(opts.threshold)))

	var total int
	for _, f := range files {
		total += len(f.Data)
	}
	fmt.Println(formatInfo(fmt.Sprintf("Uploading %d images (%.1f MB)...", len(files), float64(total)/(1024*1024))))

	// 3. send
	res, err := uploader.NewClient(opts.server, nil).Upload(ctx, info, files)
	if err != nil {
		return err
	}

	fmt.Println(formatSuccess(fmt.Sprintf("Submission %s stored with %d images", res.SubmissionID, res.ImageCount)))

	return nil
}
