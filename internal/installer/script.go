package installer

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/syntax"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
	"bootstrap/internal/runner"
)

// installScript fetches the vendor installer and pipes it to a shell. The
// script must parse as shell; an HTML error page or a truncated download is
// rejected before anything runs.
func (i *Installer) installScript(ctx context.Context, tool config.Tool, info platform.Info) (Result, error) {
	body, err := fetch(ctx, i.client, tool.Script.URL)
	if err != nil {
		return Result{}, err
	}
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(body), tool.Script.URL); err != nil {
		return Result{}, errors.Wrapf(err, "installer from %s is not a valid shell script", tool.Script.URL)
	}

	shell := tool.Script.Shell
	if shell == "" {
		shell = "sh"
	}
	args := append([]string{"-s", "--"}, tool.Script.Args...)
	if _, err := i.run.Run(ctx, runner.Command{Name: shell, Args: args, Stdin: bytes.NewReader(body), Interactive: true}); err != nil {
		return Result{}, errors.Wrapf(err, "installer script for %s failed", tool.Name)
	}

	path, ok := i.probe(ctx, tool, info)
	if !ok {
		logger.Warn("[WARN] %s installer finished but %s was not found afterwards\n", tool.Name, tool.Binary())
		path = ""
	}
	return Result{Path: path}, nil
}

// fetch GETs url and returns the whole body.
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "bad URL %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to GET %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("GET %s: HTTP status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", url)
	}
	return body, nil
}
