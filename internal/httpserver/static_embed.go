package httpserver

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberfs "github.com/gofiber/fiber/v2/middleware/filesystem"
)

// webAssets contains the browser chat client.
//
//go:embed web
var webAssets embed.FS

const webRoot = "web"

func embeddedWeb() (fs.FS, error) {
	return fs.Sub(webAssets, webRoot)
}

// webFileSystem serves publicDir when set and readable, the embedded client otherwise.
func webFileSystem(publicDir string) (http.FileSystem, error) {
	if dir := strings.TrimSpace(publicDir); dir != "" {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return http.Dir(dir), nil
		}
		slog.Warn("public dir unavailable, serving embedded web client", "dir", dir, "error", err)
	}
	sub, err := embeddedWeb()
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}

func mountWebClient(app *fiber.App, publicDir string) {
	root, err := webFileSystem(publicDir)
	if err != nil {
		slog.Warn("web client not embedded", "error", err)
		return
	}
	app.Use("/", fiberfs.New(fiberfs.Config{
		Root:   root,
		Index:  "index.html",
		Browse: false,
	}))
}
