package dam

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// primaryTypeKey marks a repository node in flat-properties payloads.
const primaryTypeKey = "jcr:primaryType"

// selfLinkPattern extracts the repository-relative path from an entity's
// self link, e.g. https://host/api/assets/travel/beach.jpg.json.
var selfLinkPattern = regexp.MustCompile(`/assets/(.+)\.json`)

// NormalizeAssetList maps any of the known listing payload shapes onto the
// canonical asset list. Shapes are checked in fixed priority order, first
// match wins: entity collection, children list, flat node properties.
// Unrecognized object payloads yield an empty list with the raw payload
// preserved; only a non-object payload is an error.
func NormalizeAssetList(payload interface{}) (AssetList, error) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return AssetList{}, &ShapeError{Got: fmt.Sprintf("%T", payload)}
	}

	if entities, ok := obj["entities"].([]interface{}); ok {
		return normalizeEntityCollection(obj, entities), nil
	}
	if children, ok := obj["children"].([]interface{}); ok {
		return normalizeChildren(children), nil
	}
	if _, ok := obj[primaryTypeKey]; ok {
		return normalizeFlatNode(obj), nil
	}

	return AssetList{Assets: []Asset{}, Raw: obj}, nil
}

func normalizeEntityCollection(obj map[string]interface{}, entities []interface{}) AssetList {
	assets := make([]Asset, 0, len(entities))
	for _, e := range entities {
		entity, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		assets = append(assets, normalizeEntity(entity))
	}

	total := len(assets)
	if props, ok := obj["properties"].(map[string]interface{}); ok {
		if paging, ok := props["srn:paging"].(map[string]interface{}); ok {
			if t, ok := paging["total"]; ok {
				total = int(asInt(t))
			}
		}
	}
	return AssetList{Assets: assets, Total: total}
}

func normalizeChildren(children []interface{}) AssetList {
	assets := make([]Asset, 0, len(children))
	for _, c := range children {
		child, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		name := asString(child["name"])
		id := asString(child["id"])
		if id == "" {
			id = name
		}
		path := asString(child["path"])
		if path == "" {
			path = joinRoot(name)
		}
		title := asString(child["title"])
		if title == "" {
			title = name
		}
		assets = append(assets, Asset{
			ID:       id,
			Name:     name,
			Path:     path,
			MimeType: asString(child["mimeType"]),
			Size:     asInt(child["size"]),
			Title:    title,
			Source:   child,
		})
	}
	return AssetList{Assets: assets, Total: len(assets)}
}

// normalizeFlatNode treats the payload as a single repository node and
// lifts every nested child object that itself carries a primary type.
func normalizeFlatNode(obj map[string]interface{}) AssetList {
	var assets []Asset
	for key, value := range obj {
		child, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := child[primaryTypeKey]; !ok {
			continue
		}
		assets = append(assets, Asset{
			ID:     key,
			Name:   key,
			Path:   joinRoot(key),
			Title:  key,
			Source: child,
		})
	}
	if assets == nil {
		assets = []Asset{}
	}
	return AssetList{Assets: assets, Total: len(assets)}
}

// normalizeEntity maps one Siren-style entity (properties bag plus links
// list) onto the canonical asset. Missing fields fall back to documented
// defaults; nothing here fails.
func normalizeEntity(entity map[string]interface{}) Asset {
	props, _ := entity["properties"].(map[string]interface{})
	links, _ := entity["links"].([]interface{})

	name := asString(props["name"])
	id := asString(props["jcr:uuid"])
	if id == "" {
		id = name
	}

	path := ""
	if href := linkHref(links, "self"); href != "" {
		if m := selfLinkPattern.FindStringSubmatch(href); m != nil {
			decoded, err := url.PathUnescape(m[1])
			if err != nil {
				decoded = m[1]
			}
			path = joinRoot(decoded)
		}
	}

	meta, _ := props["metadata"].(map[string]interface{})
	title := asString(meta["dc:title"])
	if title == "" {
		title = name
	}
	size := asInt(meta["dam:size"])
	if size == 0 {
		size = asInt(props["size"])
	}

	return Asset{
		ID:           id,
		Name:         name,
		Path:         path,
		MimeType:     asString(meta["dc:format"]),
		Size:         size,
		Width:        asInt(meta["tiff:imageWidth"]),
		Height:       asInt(meta["tiff:imageLength"]),
		Title:        title,
		Description:  asString(meta["dc:description"]),
		ThumbnailURL: linkHref(links, "thumbnail"),
		ContentURL:   linkHref(links, "content"),
		Source:       entity,
	}
}

// linkHref finds the href of the link tagged with the given rel. Rel
// entries may be a plain string or a list, and namespaced rels
// (".../rel/thumbnail") match on their last segment.
func linkHref(links []interface{}, tag string) string {
	for _, l := range links {
		link, ok := l.(map[string]interface{})
		if !ok {
			continue
		}
		switch rel := link["rel"].(type) {
		case string:
			if relMatches(rel, tag) {
				return asString(link["href"])
			}
		case []interface{}:
			for _, r := range rel {
				if relMatches(asString(r), tag) {
					return asString(link["href"])
				}
			}
		}
	}
	return ""
}

func relMatches(rel, tag string) bool {
	return rel == tag || strings.HasSuffix(rel, "/"+tag)
}

func joinRoot(name string) string {
	return RootPath + "/" + strings.TrimPrefix(name, "/")
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		var out int64
		if _, err := fmt.Sscan(n, &out); err == nil {
			return out
		}
	}
	return 0
}
