package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// Renderer carrega e personaliza os templates de mensagem. Templates de
// email trazem a primeira linha "Subject: ..."; o resto é o corpo.
type Renderer struct {
	Dir  string
	Base TemplateData
}

func NewRenderer(dir string, base TemplateData) *Renderer {
	return &Renderer{Dir: dir, Base: base}
}

// RenderEmail devolve assunto e corpo personalizados para o lead.
func (r *Renderer) RenderEmail(kind entity.TemplateKind, leadName string) (subject, body string, err error) {
	rendered, err := r.render(fmt.Sprintf("%s_email.tmpl", kind), leadName)
	if err != nil {
		return "", "", err
	}

	lines := strings.SplitN(rendered, "\n", 2)
	if !strings.HasPrefix(lines[0], "Subject:") || len(lines) < 2 {
		return "", "", fmt.Errorf("template de email %s sem linha Subject", kind)
	}

	subject = strings.TrimSpace(strings.TrimPrefix(lines[0], "Subject:"))
	body = strings.TrimSpace(lines[1])
	return subject, body, nil
}

// RenderSMS devolve o corpo do SMS personalizado para o lead.
func (r *Renderer) RenderSMS(kind entity.TemplateKind, leadName string) (string, error) {
	rendered, err := r.render(fmt.Sprintf("%s_sms.tmpl", kind), leadName)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}

func (r *Renderer) render(filename, leadName string) (string, error) {
	tmplPath := filepath.Join(r.Dir, filename)
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return "", fmt.Errorf("erro ao ler template %s: %w", filename, err)
	}

	data := r.Base
	data.Name = leadName
	if data.Name == "" {
		data.Name = "there"
	}

	var out bytes.Buffer
	if err := t.Execute(&out, data); err != nil {
		return "", fmt.Errorf("erro ao processar template %s: %w", filename, err)
	}
	return out.String(), nil
}
