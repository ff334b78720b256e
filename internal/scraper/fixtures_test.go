package scraper

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	testIndexURL  = "https://hospital.example/doctors-schedule"
	testFrameURL  = "https://docs.google.com/spreadsheets/d/e/XYZ/pubhtml?gid=0"
	testSheetOne  = "https://docs.google.com/spreadsheets/d/e/XYZ/pubhtml/sheet?headers=false&gid=0"
	testSheetTwo  = "https://docs.google.com/spreadsheets/d/e/XYZ/pubhtml/sheet?headers=false&gid=77"
	testLabelOne  = "31/01/2026 SATURDAY"
	testLabelTwo  = "01/02/2026 SUNDAY"
	testIndexPage = `<html><body><h1>Doctors Schedule</h1>
<iframe width="100%" src="https://docs.google.com/spreadsheets/d/e/XYZ/pubhtml?gid=0&amp;single=true&amp;widget=true&amp;headers=false"></iframe>
</body></html>`
	testFramePage = `<html><head><script>
var items = [];
items.push({name: "31\/01\/2026 SATURDAY", pageUrl: "https:\/\/docs.google.com\/spreadsheets\/d\/e\/XYZ\/pubhtml\/sheet?headers\x3dfalse\x26gid\x3d0", gid: "0", initialSheet: true});
items.push({name: "01\/02\/2026 SUNDAY", pageUrl: "https:\/\/docs.google.com\/spreadsheets\/d\/e\/XYZ\/pubhtml\/sheet?headers\x3dfalse\x26gid\x3d77", gid: "77", initialSheet: false});
</script></head><body></body></html>`
	testSheetPage = `<html><body><div id="sheets-viewport"><table class="waffle">
<thead><tr><th class="row-header"></th><th>A</th><th>B</th><th>C</th><th>D</th><th>E</th><th>F</th><th>G</th><th>H</th><th>I</th></tr></thead>
<tbody>
<tr><th>1</th><td colspan="4">REGULAR DOCTORS/ DENTIST</td><td colspan="5">VISITING SPECIALISTS DOCTORS</td></tr>
<tr><th>2</th><td>S.NO</td><td>DOCTOR'S NAME</td><td>ROOM</td><td>TIMING</td><td>S.NO</td><td>DOCTOR'S NAME</td><td>ROOM</td><td>SPECIALITY</td><td>TIMING</td></tr>
<tr><th>3</th><td>1</td><td>Dr. Smith</td><td>101</td><td>09:00 AM-11:00 AM</td><td>1</td><td>Dr. Rao</td><td>204</td><td>ENT</td><td>03:30 PM to 07:00 PM</td></tr>
<tr><th>4</th><td>2</td><td>Dr. Jones</td><td></td><td>02:00 PM-04:00 PM</td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><th>5</th><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
</tbody></table></div></body></html>`
)

var errUpstream = errors.New("upstream unavailable")

// fakeFetcher serves canned pages; unknown URLs fail.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.called = append(f.called, url)
	f.mu.Unlock()

	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", errors.New("no page for " + url)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func rowOf(pairs ...string) RawSheetRow {
	cells := map[string]string{}
	for i := 0; i+1 < len(pairs); i += 2 {
		cells[pairs[i]] = pairs[i+1]
	}
	return NewRawSheetRow(cells)
}

func countCalls(f *fakeFetcher, url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.called {
		if strings.EqualFold(c, url) {
			n++
		}
	}
	return n
}
