package dam_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shin2080/asset-selector-http-api/internal/dam"
)

func TestNormalizeMetadataSchemaBuckets(t *testing.T) {
	payload := decode(t, `{
		"jcr:primaryType": "dam:Asset",
		"dc:title": "Foo",
		"custom": "bar"
	}`)

	schema, err := dam.NormalizeMetadataSchema(payload)
	require.NoError(t, err)

	require.Len(t, schema.Properties, 3)
	require.Equal(t, "Foo", schema.Namespaces["dc"]["dc:title"])
	require.Equal(t, "bar", schema.Namespaces[dam.DefaultNamespace]["custom"])

	// jcr:primaryType is a kept structural key and buckets under jcr like
	// any other namespaced key.
	require.Equal(t, "dam:Asset", schema.Properties["jcr:primaryType"])
	require.Equal(t, "dam:Asset", schema.Namespaces["jcr"]["jcr:primaryType"])
}

func TestNormalizeMetadataSchemaDropsSystemKeys(t *testing.T) {
	payload := decode(t, `{
		"jcr:primaryType": "dam:Asset",
		"jcr:mixinTypes": ["mix:referenceable"],
		"jcr:title": "Display title",
		"jcr:description": "Display description",
		"jcr:created": "2024-01-01T00:00:00.000Z",
		"jcr:uuid": "abc-123",
		"dc:format": "image/png"
	}`)

	schema, err := dam.NormalizeMetadataSchema(payload)
	require.NoError(t, err)

	require.Contains(t, schema.Properties, "jcr:primaryType")
	require.Contains(t, schema.Properties, "jcr:mixinTypes")
	require.Contains(t, schema.Properties, "jcr:title")
	require.Contains(t, schema.Properties, "jcr:description")
	require.NotContains(t, schema.Properties, "jcr:created")
	require.NotContains(t, schema.Properties, "jcr:uuid")
	require.Contains(t, schema.Properties, "dc:format")
}

func TestNormalizeMetadataSchemaEmpty(t *testing.T) {
	schema, err := dam.NormalizeMetadataSchema(decode(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, schema.Properties)
	require.NotNil(t, schema.Namespaces)
	require.Empty(t, schema.Properties)
	require.Empty(t, schema.Namespaces)
}

func TestNormalizeMetadataSchemaConsistency(t *testing.T) {
	payload := decode(t, `{
		"dc:title": "T",
		"dc:creator": "C",
		"tiff:imageWidth": 100,
		"xmp:Rating": 5,
		"plainkey": true,
		"another": null,
		"jcr:primaryType": "dam:Asset",
		"jcr:lastModified": "dropped"
	}`)

	schema, err := dam.NormalizeMetadataSchema(payload)
	require.NoError(t, err)

	// Flattening the namespace buckets reproduces exactly the flat
	// property map.
	flattened := map[string]interface{}{}
	for ns, bucket := range schema.Namespaces {
		require.NotEmpty(t, bucket, "namespace %s", ns)
		for key, value := range bucket {
			_, seen := flattened[key]
			require.False(t, seen, "key %s in more than one namespace", key)
			flattened[key] = value
		}
	}
	require.Equal(t, schema.Properties, flattened)
}

func TestNormalizeMetadataSchemaNonObject(t *testing.T) {
	_, err := dam.NormalizeMetadataSchema(decode(t, `["a","b"]`))
	var shapeErr *dam.ShapeError
	require.ErrorAs(t, err, &shapeErr)
}
