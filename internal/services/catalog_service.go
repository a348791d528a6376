package services

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"

	"herotime/internal/models/response_models"
	mem "herotime/pkg/memcache"
	"herotime/pkg/storage"
)

const (
	catalogTTL        = 5 * time.Minute
	propsCacheKey     = "catalog:props"
	templatesCacheKey = "catalog:templates"
)

type propFolder struct {
	name      string
	positions []string
}

var propFolders = map[string]propFolder{
	"hands": {name: "Hands", positions: []string{"leftHand", "rightHand"}},
	"head":  {name: "Head", positions: []string{"head"}},
	"body":  {name: "Body", positions: []string{"body"}},
	"legs":  {name: "Legs", positions: []string{"leftLeg", "rightLeg"}},
}

var templateFolders = map[string]string{
	"playful":   "Playful & Emotional",
	"retro":     "Retro & Nostalgic",
	"action":    "Action & Adventure",
	"cinematic": "Cinematic & Stylized",
	"avengers":  "Avengers",
}

var catalogImageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

type CatalogService interface {
	ListProps(ctx context.Context) []response_models.PropCategory
	ListTemplates(ctx context.Context) []response_models.TemplateCategory
	FindTemplate(ctx context.Context, id string) (*response_models.Template, bool)
}

type catalogService struct {
	store storage.Storage
	cache *mem.LoaderCache
}

func NewCatalogService(store storage.Storage) CatalogService {
	return &catalogService{store: store, cache: mem.NewLoaderCache(catalogTTL)}
}

func (s *catalogService) ListProps(ctx context.Context) []response_models.PropCategory {
	v, err := s.cache.GetOrLoad(ctx, propsCacheKey, func(ctx context.Context) (any, error) {
		return s.loadProps(ctx)
	})
	if err != nil {
		log.WithError(err).Error("failed to load props from storage")
		return []response_models.PropCategory{}
	}
	return v.([]response_models.PropCategory)
}

func (s *catalogService) ListTemplates(ctx context.Context) []response_models.TemplateCategory {
	v, err := s.cache.GetOrLoad(ctx, templatesCacheKey, func(ctx context.Context) (any, error) {
		return s.loadTemplates(ctx)
	})
	if err != nil {
		log.WithError(err).Error("failed to load templates from storage")
		return []response_models.TemplateCategory{}
	}
	return v.([]response_models.TemplateCategory)
}

func (s *catalogService) FindTemplate(ctx context.Context, id string) (*response_models.Template, bool) {
	for _, cat := range s.ListTemplates(ctx) {
		for _, t := range cat.Templates {
			if t.ID == id {
				found := t
				return &found, true
			}
		}
	}
	return nil, false
}

func (s *catalogService) loadProps(ctx context.Context) ([]response_models.PropCategory, error) {
	folders, err := s.store.List(ctx, storage.BucketHeroProps, "")
	if err != nil {
		return nil, err
	}

	categories := []response_models.PropCategory{}
	for _, folder := range sortedFolders(folders) {
		cfg, ok := propFolders[folder]
		if !ok {
			log.WithField("folder", folder).Warn("no prop category configured for folder")
			continue
		}

		files, err := s.store.List(ctx, storage.BucketHeroProps, folder)
		if err != nil {
			log.WithError(err).WithField("folder", folder).Error("failed to list prop folder")
			continue
		}

		props := []response_models.Prop{}
		for _, name := range imageFiles(files) {
			props = append(props, response_models.Prop{
				ID:        catalogID(name),
				Name:      catalogName(name),
				Image:     s.store.PublicURL(storage.BucketHeroProps, folder+"/"+name),
				Positions: cfg.positions,
			})
		}
		if len(props) == 0 {
			continue
		}
		categories = append(categories, response_models.PropCategory{
			ID:       folder,
			Name:     cfg.name,
			IconName: folder,
			Props:    props,
		})
	}

	log.WithField("categories", len(categories)).Info("loaded prop catalog")
	return categories, nil
}

func (s *catalogService) loadTemplates(ctx context.Context) ([]response_models.TemplateCategory, error) {
	folders, err := s.store.List(ctx, storage.BucketHeroTemplates, "")
	if err != nil {
		return nil, err
	}

	categories := []response_models.TemplateCategory{}
	for _, folder := range sortedFolders(folders) {
		label, ok := templateFolders[folder]
		if !ok {
			log.WithField("folder", folder).Warn("no template category configured for folder")
			continue
		}

		files, err := s.store.List(ctx, storage.BucketHeroTemplates, folder)
		if err != nil {
			log.WithError(err).WithField("folder", folder).Error("failed to list template folder")
			continue
		}

		templates := []response_models.Template{}
		for _, name := range imageFiles(files) {
			templates = append(templates, response_models.Template{
				ID:    catalogID(name),
				Name:  catalogName(name),
				Image: s.store.PublicURL(storage.BucketHeroTemplates, folder+"/"+name),
			})
		}
		if len(templates) == 0 {
			continue
		}
		categories = append(categories, response_models.TemplateCategory{
			ID:        folder,
			Name:      label,
			Templates: templates,
		})
	}

	log.WithField("categories", len(categories)).Info("loaded template catalog")
	return categories, nil
}

func sortedFolders(entries []storage.Entry) []string {
	var folders []string
	for _, e := range entries {
		if e.Folder {
			folders = append(folders, e.Name)
		}
	}
	sort.Strings(folders)
	return folders
}

func imageFiles(entries []storage.Entry) []string {
	var files []string
	for _, e := range entries {
		if !e.Folder && catalogImageExts[strings.ToLower(path.Ext(e.Name))] {
			files = append(files, e.Name)
		}
	}
	sort.Strings(files)
	return files
}

func stripImageExt(filename string) string {
	ext := path.Ext(filename)
	if catalogImageExts[strings.ToLower(ext)] {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}

// catalogID turns "Beer_Glass.png" into "beer-glass".
func catalogID(filename string) string {
	base := strings.ToLower(stripImageExt(filename))
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, base)
}

// catalogName turns "beer_glass.png" into "Beer Glass".
func catalogName(filename string) string {
	base := stripImageExt(filename)
	words := strings.Split(strings.NewReplacer("_", " ", "-", " ").Replace(base), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
