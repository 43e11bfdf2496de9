package discord

import (
	"strings"
	"testing"
)

func TestBuildEmbedSkipsEmptyFields(t *testing.T) {
	e := BuildEmbed("Inscription", "desc", ColorRegistration, "footer",
		Field{Name: "Progression", Value: "`[>   ]`"},
		Field{Name: "Erreurs", Value: ""},
	)
	if len(e.Fields) != 1 || e.Fields[0].Name != "Progression" {
		t.Fatalf("fields = %+v", e.Fields)
	}
	if e.Footer == nil || e.Footer.Text != "footer" {
		t.Fatalf("footer = %+v", e.Footer)
	}
}

func TestPagify(t *testing.T) {
	text := strings.Repeat("0123456789\n", 5)
	pages := Pagify(text, 25)
	if strings.Join(pages, "") != text {
		t.Fatalf("pages lose content: %q", pages)
	}
	for _, p := range pages {
		if len(p) > 25 {
			t.Fatalf("page too long: %q", p)
		}
		if !strings.HasSuffix(p, "\n") {
			t.Fatalf("page cut mid-line: %q", p)
		}
	}

	long := strings.Repeat("x", 60)
	pages = Pagify(long, 25)
	if len(pages) != 3 || strings.Join(pages, "") != long {
		t.Fatalf("long line pages = %q", pages)
	}
}

func TestMentions(t *testing.T) {
	if ChannelMention("1") != "<#1>" || RoleMention("2") != "<@&2>" || UserMention("3") != "<@3>" {
		t.Fatal("bad mention format")
	}
	if ChannelMention("") != "" {
		t.Fatal("empty channel must render empty")
	}
}
