package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	avatarSize   = 70
	avatarFolder = "avatars"
	// glyph tile before upscaling; basicfont glyphs are 7x13
	avatarTileSize = 14
)

// avatarPalette is keyed by the code point of the user's first letter.
var avatarPalette = []color.NRGBA{
	{0x42, 0x85, 0xf4, 0xff}, // blue
	{0x8e, 0x44, 0xad, 0xff}, // purple
	{0xe7, 0x4c, 0x3c, 0xff}, // red
	{0x27, 0xae, 0x60, 0xff}, // green
	{0x87, 0xce, 0xeb, 0xff}, // skyblue
	{0xf0, 0x62, 0x92, 0xff}, // pink
	{0xf1, 0xc4, 0x0f, 0xff}, // gold
}

// AvatarService generates first-letter avatars and stores them on
// Cloudflare R2 through the S3 API.
type AvatarService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewAvatarService constructs an S3-compatible client for Cloudflare R2.
func NewAvatarService(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket, publicURL string) (*AvatarService, error) {
	if accountID == "" || accessKeyID == "" || secretAccessKey == "" || bucket == "" || publicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &AvatarService{
		s3Client:  s3Client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// CreateForUser generates the letter avatar for a username, uploads it,
// and returns the public URL.
func (s *AvatarService) CreateForUser(ctx context.Context, username string) (string, error) {
	png, err := GenerateAvatar(username)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.png", avatarFolder, uuid.NewString())
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(png),
		ContentType:  aws.String("image/png"),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// GenerateAvatar renders the uppercased first letter of the username on a
// colored tile and encodes it as a 70x70 PNG. The background color is a
// stable function of the letter.
func GenerateAvatar(username string) ([]byte, error) {
	letter := 'U'
	for _, r := range username {
		letter = unicode.ToUpper(r)
		break
	}

	bg := avatarPalette[int(letter)%len(avatarPalette)]

	tile := image.NewNRGBA(image.Rect(0, 0, avatarTileSize, avatarTileSize))
	for i := range tile.Pix {
		switch i % 4 {
		case 0:
			tile.Pix[i] = bg.R
		case 1:
			tile.Pix[i] = bg.G
		case 2:
			tile.Pix[i] = bg.B
		case 3:
			tile.Pix[i] = bg.A
		}
	}

	face := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(color.White),
		Face: face,
		// center the 7x13 glyph on the tile; Y is the baseline
		Dot: fixed.P((avatarTileSize-7)/2, (avatarTileSize-13)/2+face.Ascent),
	}
	drawer.DrawString(string(letter))

	// nearest-neighbor keeps the glyph edges crisp at 70x70
	avatar := imaging.Resize(tile, avatarSize, avatarSize, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar png: %w", err)
	}
	return buf.Bytes(), nil
}
