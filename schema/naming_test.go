package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldNaming(t *testing.T) {
	tests := []struct {
		member     string
		lowerCamel string
		snake      string
	}{
		{member: "Name", lowerCamel: "name", snake: "name"},
		{member: "FirstName", lowerCamel: "firstName", snake: "first_name"},
		{member: "CreatedAt", lowerCamel: "createdAt", snake: "created_at"},
		{member: "URL", lowerCamel: "url", snake: "url"},
		{member: "URLPath", lowerCamel: "urlPath", snake: "url_path"},
		{member: "HTTPStatusCode", lowerCamel: "httpStatusCode", snake: "http_status_code"},
		{member: "ID", lowerCamel: "id", snake: "id"},
		{member: "Oauth2Token", lowerCamel: "oauth2Token", snake: "oauth2_token"},
	}

	camel := NewFieldNamingStrategy(FieldLowerCamel)
	snake := NewFieldNamingStrategy(FieldSnakeCase)

	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			assert.Equal(t, tt.lowerCamel, camel.FieldName(tt.member))
			assert.Equal(t, tt.snake, snake.FieldName(tt.member))
		})
	}
}

func TestStripAccessorPrefix(t *testing.T) {
	member, ok := StripAccessorPrefix("GetFirstName")
	assert.True(t, ok)
	assert.Equal(t, "FirstName", member)

	_, ok = StripAccessorPrefix("Get")
	assert.False(t, ok)

	_, ok = StripAccessorPrefix("FirstName")
	assert.False(t, ok)

	// Prefix check is literal; Getter is a conforming accessor named "ter".
	member, ok = StripAccessorPrefix("Getter")
	assert.True(t, ok)
	assert.Equal(t, "ter", member)
}

func TestTableNaming(t *testing.T) {
	tests := []struct {
		typeName string
		plural   string
		singular string
	}{
		{typeName: "User", plural: "users", singular: "user"},
		{typeName: "BlogPost", plural: "blog_posts", singular: "blog_post"},
		{typeName: "Person", plural: "people", singular: "person"},
	}

	plural := NewTableNamingStrategy(TableSnakeCasePlural)
	singular := NewTableNamingStrategy(TableSnakeCaseSingular)

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.plural, plural.TableName(tt.typeName))
			assert.Equal(t, tt.singular, singular.TableName(tt.typeName))
		})
	}
}

func TestDefaultNamingStrategy(t *testing.T) {
	s := DefaultNamingStrategy()
	assert.Equal(t, "firstName", s.FieldName("FirstName"))
	assert.Equal(t, "users", s.TableName("User"))
}
