package cloudinary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service implements the FileStorage interface using Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	root   string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		root:   strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary under the given folder and returns a secure URL.
func (s *Service) Upload(ctx context.Context, folder, name string, reader io.Reader) (string, error) {
	target := strings.Trim(folder, "/")
	if s.root != "" {
		target = path.Join(s.root, target)
	}

	params := uploader.UploadParams{
		Folder:       target,
		PublicID:     buildPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// Destroy removes the asset referenced by a previously returned secure URL.
func (s *Service) Destroy(ctx context.Context, fileURL string) error {
	publicID, err := publicIDFromURL(fileURL)
	if err != nil {
		return err
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("unexpected destroy result: %s", result.Result)
	}

	s.logger.Info().Str("public_id", publicID).Msg("file removed from cloudinary")

	return nil
}

var deliveryPathPattern = regexp.MustCompile(`/(?:image|raw|video)/upload/(?:v\d+/)?(.+)$`)

func publicIDFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset url: %w", err)
	}

	matches := deliveryPathPattern.FindStringSubmatch(parsed.Path)
	if len(matches) != 2 {
		return "", fmt.Errorf("unrecognised cloudinary url: %s", fileURL)
	}

	publicID := matches[1]
	if ext := path.Ext(publicID); ext != "" {
		publicID = strings.TrimSuffix(publicID, ext)
	}

	return publicID, nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
