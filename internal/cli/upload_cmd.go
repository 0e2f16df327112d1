package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/samvad-hq/sphere-client/internal/domain"
	"github.com/samvad-hq/sphere-client/pkg/api"
	"github.com/spf13/cobra"
)

func (s *state) uploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload media files",
	}
	cmd.AddCommand(
		s.uploadKindCommand("image"),
		s.uploadKindCommand("video"),
	)
	return cmd
}

func (s *state) uploadKindCommand(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " FILE",
		Short: "Upload a " + kind + " as multipart form data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", kind, err)
			}
			defer f.Close()

			contentType, err := detectContentType(f)
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			send := s.rt.API().Upload.Image
			if kind == "video" {
				send = s.rt.API().Upload.Video
			}
			env := api.Fetch(cmd.Context(), func(ctx context.Context) api.Envelope[domain.UploadResult] {
				return send(ctx, name, contentType, f)
			}, api.FetchOptions[domain.UploadResult]{
				SuccessMessage: "Uploaded " + name,
				Notifier:       s.rt.Notifier(),
			})
			return printEnvelope(s, cmd.OutOrStdout(), env)
		},
	}
}

// detectContentType prefers the extension and falls back to sniffing. The
// file offset is rewound afterwards.
func detectContentType(f *os.File) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(f.Name())); ct != "" {
		return ct, nil
	}
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", f.Name(), err)
	}
	return http.DetectContentType(head[:n]), nil
}
