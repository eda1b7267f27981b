package storage

import (
	"blogCMS/internal/config"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvatarObjectName(t *testing.T) {
	now := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)

	name := AvatarObjectName("u1", "Me.PNG", now)
	assert.True(t, strings.HasPrefix(name, "avatars/u1/2025/04/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	noExt := AvatarObjectName("u1", "avatar", now)
	assert.True(t, strings.HasSuffix(noExt, ".jpg"))
}

func TestObjectURLRoundTrip(t *testing.T) {
	cfg := config.MinIO{Endpoint: "localhost:9000", BucketName: "avatars"}

	url := ObjectURL(cfg, "avatars/u1/2025/04/x.png")
	assert.Equal(t, "http://localhost:9000/avatars/avatars/u1/2025/04/x.png", url)
	assert.Equal(t, "avatars/u1/2025/04/x.png", ObjectNameFromURL(cfg, url))

	assert.Equal(t, "", ObjectNameFromURL(cfg, "https://cdn.example.com/x.png"))

	cfg.UseSSL = true
	assert.True(t, strings.HasPrefix(ObjectURL(cfg, "a"), "https://"))
}
