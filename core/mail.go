package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	appfs "github.com/EsdrasCaleb/moodle-mod-msteams/fs"
)

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads and caches the embedded email templates.
// Templates are named <name>.txt / <name>.html under templates/.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)

		entries, err := fs.ReadDir(appfs.FS, "templates")
		if err != nil {
			logger.Fatal(fmt.Sprintf("reading email templates: %v", err), err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			fname := entry.Name()
			ext := path.Ext(fname)
			name := strings.TrimSuffix(fname, ext)
			fpath := path.Join("templates", fname)

			entryCache, ok := templates[name]
			if !ok {
				entryCache = make(tmplCacheEntry, 2)
				templates[name] = entryCache
			}

			switch ext {
			case ".txt":
				tmpl, err := texttmpl.ParseFS(appfs.FS, fpath)
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing %s: %v", fpath, err), err)
				}
				entryCache[ext] = tmpl
			case ".html":
				tmpl, err := htmltmpl.ParseFS(appfs.FS, fpath)
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing %s: %v", fpath, err), err)
				}
				entryCache[ext] = tmpl
			}
		}
	})
}

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		FrontendBaseURL: Conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	tmpl, ok := m.getTemplate(".txt")
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.(*texttmpl.Template).Execute(&buf, m.getContextData()); err != nil {
		return err
	}
	m.TextContent = buf.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	tmpl, ok := m.getTemplate(".html")
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.(*htmltmpl.Template).Execute(&buf, m.getContextData()); err != nil {
		return err
	}
	m.HTMLContent = buf.String()
	return nil
}

// Render fills TextContent and HTMLContent from BodyStr or the cached
// templates matching TemplateName.
func (m *EmailMessage) Render() error {
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To)+len(m.Cc)+len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
