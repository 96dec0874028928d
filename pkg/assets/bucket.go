package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
)

var (
	videoExtensions     = []string{".mp4", ".m4v"}
	alternateExtensions = []string{".webm"}
	imageExtensions     = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// BucketSource describes where a manifest lives in Cloud Storage.
// Objects are laid out as <Prefix>/<primary|backup>/<theme>/<id>.<ext>.
type BucketSource struct {
	Bucket   string
	Prefix   string
	Default  string
	Fallback string
}

// LoadBucket lists the bucket and builds a manifest with 24-hour signed URLs
func LoadBucket(ctx context.Context, src BucketSource) (Manifest, error) {
	logger := log.WithComponent("assets")

	client, err := storage.NewClient(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	bucket := client.Bucket(src.Bucket)
	query := &storage.Query{Prefix: objectPrefix(src.Prefix)}
	it := bucket.Objects(ctx, query)

	var names []string
	for {
		obj, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("list objects: %w", err)
		}
		names = append(names, obj.Name)
	}
	logger.Info().Int("objects", len(names)).Str("bucket", src.Bucket).Msg("listed asset bucket")

	sign := func(name string) (string, error) {
		return bucket.SignedURL(name, &storage.SignedURLOptions{
			Expires: time.Now().Add(24 * time.Hour),
			Method:  "GET",
		})
	}
	return ManifestFromObjects(src, names, sign)
}

// ManifestFromObjects assembles a manifest from object names, using sign to turn each
// object into a fetchable URL. Objects outside the layout are ignored and assets without a
// video or poster are skipped.
func ManifestFromObjects(src BucketSource, names []string, sign func(string) (string, error)) (Manifest, error) {
	logger := log.WithComponent("assets")
	prefix := objectPrefix(src.Prefix)

	type entry struct {
		registry string
		asset    models.VideoAsset
	}
	entries := make(map[string]*entry)

	for _, name := range names {
		rel, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		parts := strings.Split(rel, "/")
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		registry, theme, filename := parts[0], models.Theme(parts[1]), parts[2]
		if registry != "primary" && registry != "backup" {
			continue
		}
		if !theme.Valid() {
			logger.Warn().Str("object", name).Msg("skipping object with unknown theme")
			continue
		}

		ext := strings.ToLower(path.Ext(filename))
		id := strings.TrimSuffix(filename, path.Ext(filename))

		e, ok := entries[id]
		if !ok {
			e = &entry{registry: registry, asset: models.VideoAsset{ID: id, Title: titleFromID(id), Theme: theme}}
			entries[id] = e
		}

		url, err := sign(name)
		if err != nil {
			logger.Warn().Err(err).Str("object", name).Msg("could not sign object")
			continue
		}

		switch {
		case hasExt(ext, videoExtensions):
			e.asset.PrimaryURL = url
		case hasExt(ext, alternateExtensions):
			e.asset.AlternateURL = url
		case hasExt(ext, imageExtensions):
			e.asset.PosterURL = url
		}
	}

	m := Manifest{Default: src.Default, Fallback: src.Fallback}
	for _, e := range entries {
		if e.asset.PrimaryURL == "" || e.asset.PosterURL == "" {
			logger.Warn().Str(log.FieldAssetID, e.asset.ID).Msg("skipping asset without video or poster")
			continue
		}
		if e.registry == "backup" {
			m.Backups = append(m.Backups, e.asset)
		} else {
			m.Assets = append(m.Assets, e.asset)
		}
	}

	sort.Slice(m.Assets, func(i, j int) bool { return naturalLess(m.Assets[i].ID, m.Assets[j].ID) })
	sort.Slice(m.Backups, func(i, j int) bool { return naturalLess(m.Backups[i].ID, m.Backups[j].ID) })

	if m.Default == "" && len(m.Assets) > 0 {
		m.Default = m.Assets[0].ID
	}
	if m.Fallback == "" && len(m.Backups) > 0 {
		m.Fallback = m.Backups[0].ID
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// objectPrefix turns a folder name into an object name prefix, so that
// "backgrounds" does not also match "backgrounds2".
func objectPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}

func hasExt(ext string, list []string) bool {
	for _, candidate := range list {
		if ext == candidate {
			return true
		}
	}
	return false
}

// titleFromID turns "hero_simple_abstract" into "Hero Simple Abstract"
func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// naturalLess compares strings treating digit runs as numbers, so "bg2" < "bg10"
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			n1, n2 := 0, 0
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				n1 = n1*10 + int(s1[i]-'0')
				i++
			}
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				n2 = n2*10 + int(s2[j]-'0')
				j++
			}
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}
		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}
	return len(s1)-i < len(s2)-j
}
