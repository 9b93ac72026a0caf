package images

import "testing"

func TestExtract_OrderAndDuplicates(t *testing.T) {
	body := "![one](a.png) text ![](./img/b.jpg \"Title\")\n![again](a.png)"
	got := Extract(body)
	want := []string{"a.png", "./img/b.jpg", "a.png"}
	if len(got) != len(want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extract[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtract_None(t *testing.T) {
	if got := Extract("[link](page.md) no images"); len(got) != 0 {
		t.Errorf("Extract = %v, want none", got)
	}
}

func TestRewrite_Relative(t *testing.T) {
	body := "![diagram](../assets/net/diagram.png \"Network\")"
	got := Rewrite(body, "labs/ad-attacks")
	want := "![diagram](/images/notes/labs/ad-attacks/diagram.png \"Network\")"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewrite_LeavesAbsoluteAndCanonicalUntouched(t *testing.T) {
	body := "![a](https://cdn.example.com/x.png) ![b](http://x.io/y.gif) ![c](/images/notes/other/z.png)"
	if got := Rewrite(body, "note"); got != body {
		t.Errorf("Rewrite changed absolute references: %q", got)
	}
}

func TestRewrite_Mixed(t *testing.T) {
	body := "start ![keep](https://x.io/a.png) mid ![move](shots/b.png) end"
	got := Rewrite(body, "web/xss")
	want := "start ![keep](https://x.io/a.png) mid ![move](/images/notes/web/xss/b.png) end"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestPublicPath_StripsQueryAndBackslashes(t *testing.T) {
	if got := PublicPath("n", `img\sub\c.png?raw=1`); got != "/images/notes/n/c.png" {
		t.Errorf("PublicPath = %q", got)
	}
}
