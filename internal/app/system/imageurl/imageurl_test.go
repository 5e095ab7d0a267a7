package imageurl

import (
	"strings"
	"testing"
)

func TestTransform_NonHostURLUnchanged(t *testing.T) {
	tests := []string{
		"https://example.com/images/upload/selfie.jpg",
		"https://cdn.other.net/v1/photo.png",
		"not a url at all",
		"",
	}
	for _, in := range tests {
		if got := Transform(in, Options{Width: 400}); got != in {
			t.Errorf("Transform(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestTransform_DefaultQualityAndFormat(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/upload/v12345/people/selfie.jpg"
	got := Transform(in, Options{})

	want := "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto/v12345/people/selfie.jpg"
	if got != want {
		t.Errorf("Transform = %q, want %q", got, want)
	}
}

func TestTransform_AllOptions(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/upload/v12345/selfie.jpg"
	got := Transform(in, Options{
		Quality:     "80",
		Format:      "webp",
		Progressive: true,
		Crop:        "fill",
		Gravity:     "face",
		Width:       1080,
		Height:      720,
		DPR:         "2",
	})

	wantSegment := "q_80,f_webp,fl_progressive,c_fill,g_face,w_1080,h_720,dpr_2"
	if !strings.Contains(got, "/upload/"+wantSegment+"/v12345/selfie.jpg") {
		t.Errorf("Transform = %q, want transform segment %q after upload", got, wantSegment)
	}
}

func TestTransform_NoUploadSegment(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/fetch/v12345/selfie.jpg"
	if got := Transform(in, Options{}); got != in {
		t.Errorf("Transform = %q, want input unchanged when upload segment absent", got)
	}
}

func TestTransform_SuffixPathIntact(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/upload/v1/a/b/c/d.jpg"
	got := Transform(in, Options{})
	if !strings.HasSuffix(got, "/v1/a/b/c/d.jpg") {
		t.Errorf("Transform = %q, want original suffix path preserved", got)
	}
}
