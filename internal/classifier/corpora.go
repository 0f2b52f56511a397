/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package classifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReferenceCorpora holds the known-value dictionaries and the per-region State and Country
// matchers. It is built once and only read afterwards, so it is safe to share across goroutines.
type ReferenceCorpora struct {
	firstNames      map[string]struct{}
	lastNames       map[string]struct{}
	cities          map[string]struct{}
	stateMatchers   map[string]*regexp.Regexp
	countryMatchers map[string]*regexp.Regexp
	regions         []string
	placeSuffixes   []string
}

// CorporaOption extends the default corpora at construction time.
type CorporaOption func(*ReferenceCorpora)

// WithFirstNames adds names to the first-name set.
func WithFirstNames(names ...string) CorporaOption {
	return func(c *ReferenceCorpora) { addAll(c.firstNames, names) }
}

// WithLastNames adds names to the last-name set.
func WithLastNames(names ...string) CorporaOption {
	return func(c *ReferenceCorpora) { addAll(c.lastNames, names) }
}

// WithCities adds names to the city set.
func WithCities(names ...string) CorporaOption {
	return func(c *ReferenceCorpora) { addAll(c.cities, names) }
}

// NewReferenceCorpora builds the default corpora plus anything the options add.
func NewReferenceCorpora(opts ...CorporaOption) *ReferenceCorpora {
	c := &ReferenceCorpora{
		firstNames:      toSet(defaultFirstNames),
		lastNames:       toSet(defaultLastNames),
		cities:          toSet(defaultCities),
		stateMatchers:   compileRegions(stateShapes),
		countryMatchers: compileRegions(countryShapes),
		placeSuffixes:   defaultPlaceSuffixes,
	}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]bool)
	for region := range c.stateMatchers {
		seen[region] = true
	}
	for region := range c.countryMatchers {
		seen[region] = true
	}
	for region := range seen {
		c.regions = append(c.regions, region)
	}
	sort.Strings(c.regions)
	return c
}

// IsFirstName reports an exact, case-normalized first-name hit.
func (c *ReferenceCorpora) IsFirstName(value string) bool {
	_, ok := c.firstNames[normalize(value)]
	return ok
}

// IsLastName reports an exact, case-normalized last-name hit.
func (c *ReferenceCorpora) IsLastName(value string) bool {
	_, ok := c.lastNames[normalize(value)]
	return ok
}

// IsCity reports an exact, case-normalized city hit.
func (c *ReferenceCorpora) IsCity(value string) bool {
	_, ok := c.cities[normalize(value)]
	return ok
}

// StateRegion returns the first region (alphabetically) whose State matcher accepts value.
func (c *ReferenceCorpora) StateRegion(value string) (string, bool) {
	return matchRegion(c.regions, c.stateMatchers, normalize(value))
}

// CountryRegion returns the first region (alphabetically) whose Country matcher accepts value.
func (c *ReferenceCorpora) CountryRegion(value string) (string, bool) {
	return matchRegion(c.regions, c.countryMatchers, normalize(value))
}

// LooksLikeCity accepts a corpus city, a title-cased token such as "Springfield",
// or a name ending in a known place suffix such as "-ville". The title-case test
// needs the value as it appeared in the source, before lower-casing.
func (c *ReferenceCorpora) LooksLikeCity(raw string) bool {
	if c.IsCity(raw) {
		return true
	}
	if isTitleCased(strings.TrimSpace(raw)) {
		return true
	}
	v := normalize(raw)
	for _, suffix := range c.placeSuffixes {
		if len(v) > len(suffix) && strings.HasSuffix(v, suffix) {
			return true
		}
	}
	return false
}

func matchRegion(regions []string, matchers map[string]*regexp.Regexp, v string) (string, bool) {
	if v == "" {
		return "", false
	}
	for _, region := range regions {
		re, ok := matchers[region]
		if ok && re.MatchString(v) {
			return region, true
		}
	}
	return "", false
}

func isTitleCased(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.Und).String(strings.ToLower(s)) == s
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	addAll(set, values)
	return set
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		if n := normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
}

func compileRegions(shapes map[string]string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(shapes))
	for region, expr := range shapes {
		out[region] = regexp.MustCompile(expr)
	}
	return out
}

var stateShapes = map[string]string{
	"US": `^(alabama|alaska|arizona|arkansas|california|colorado|connecticut|delaware|florida|georgia|` +
		`hawaii|idaho|illinois|indiana|iowa|kansas|kentucky|louisiana|maine|maryland|massachusetts|` +
		`michigan|minnesota|mississippi|missouri|montana|nebraska|nevada|new hampshire|new jersey|` +
		`new mexico|new york|north carolina|north dakota|ohio|oklahoma|oregon|pennsylvania|` +
		`rhode island|south carolina|south dakota|tennessee|texas|utah|vermont|virginia|washington|` +
		`west virginia|wisconsin|wyoming|district of columbia|` +
		`al|ak|az|ar|ca|co|ct|de|fl|ga|hi|id|il|in|ia|ks|ky|la|me|md|ma|mi|mn|ms|mo|mt|ne|nv|nh|nj|` +
		`nm|ny|nc|nd|oh|ok|or|pa|ri|sc|sd|tn|tx|ut|vt|va|wa|wv|wi|wy|dc)$`,
	"CA": `^(alberta|british columbia|manitoba|new brunswick|newfoundland and labrador|nova scotia|` +
		`ontario|prince edward island|quebec|québec|saskatchewan|yukon|northwest territories|nunavut|` +
		`ab|bc|mb|nb|nl|ns|on|pe|qc|sk|yt|nt|nu)$`,
	"AU": `^(new south wales|victoria|queensland|western australia|south australia|tasmania|` +
		`australian capital territory|northern territory|nsw|vic|qld|tas|act)$`,
	"RU": `^[а-яё -]+ (область|край)$|^(республика [а-яё -]+)$`,
}

var countryShapes = map[string]string{
	"US": `^(us|usa|u\.s\.|u\.s\.a\.|united states|united states of america|unitedstates|america)$`,
	"CA": `^(can|canada)$`,
	"GB": `^(gb|gbr|uk|united kingdom|great britain|england|scotland|wales)$`,
	"RU": `^(ru|rus|russia|russian federation|россия|рф|российская федерация)$`,
	"DE": `^(deu|germany|deutschland)$`,
	"FR": `^(fra|france)$`,
	"AU": `^(aus|australia)$`,
	"MX": `^(mex|mexico|méxico)$`,
	"UA": `^(ua|ukr|ukraine|украина)$`,
}

var defaultPlaceSuffixes = []string{
	"ville", "burgh", "burg", "field", "ford", "port", "haven", "dale", "polis", "grad", "mouth", "chester",
}

var defaultFirstNames = []string{
	"james", "john", "robert", "michael", "william", "david", "richard", "joseph", "thomas", "charles",
	"christopher", "daniel", "matthew", "anthony", "mark", "donald", "steven", "paul", "andrew", "joshua",
	"kenneth", "kevin", "brian", "george", "timothy", "ronald", "edward", "jason", "jeffrey", "ryan",
	"jacob", "gary", "nicholas", "eric", "jonathan", "stephen", "larry", "justin", "scott", "brandon",
	"mary", "patricia", "jennifer", "linda", "elizabeth", "barbara", "susan", "jessica", "sarah", "karen",
	"lisa", "nancy", "betty", "margaret", "sandra", "ashley", "kimberly", "emily", "donna", "michelle",
	"carol", "amanda", "dorothy", "melissa", "deborah", "stephanie", "rebecca", "sharon", "laura", "cynthia",
	"kathleen", "amy", "angela", "shirley", "anna", "brenda", "pamela", "emma", "nicole", "helen",
	"olivia", "sophia", "isabella", "mia", "noah", "liam", "ethan", "lucas", "mason", "logan",
	"иван", "алексей", "дмитрий", "сергей", "андрей", "михаил", "николай", "владимир", "ольга", "анна",
	"мария", "елена", "наталья", "татьяна", "екатерина", "ирина",
}

var defaultLastNames = []string{
	"smith", "johnson", "williams", "brown", "jones", "garcia", "miller", "davis", "rodriguez", "martinez",
	"hernandez", "lopez", "gonzalez", "wilson", "anderson", "taylor", "moore", "jackson", "martin", "lee",
	"perez", "white", "harris", "sanchez", "clark", "ramirez", "lewis", "robinson", "walker", "young",
	"allen", "king", "wright", "scott", "torres", "nguyen", "hill", "flores", "green", "adams",
	"nelson", "baker", "hall", "rivera", "campbell", "mitchell", "carter", "roberts", "gomez", "phillips",
	"evans", "turner", "diaz", "parker", "cruz", "edwards", "collins", "reyes", "stewart", "morris",
	"morales", "murphy", "cook", "rogers", "gutierrez", "ortiz", "morgan", "cooper", "peterson", "bailey",
	"reed", "kelly", "howard", "ramos", "kim", "cox", "ward", "richardson", "watson", "brooks",
	"иванов", "смирнов", "кузнецов", "попов", "васильев", "петров", "соколов", "михайлов", "новиков",
	"федоров", "морозов", "волков", "иванова", "смирнова", "кузнецова", "петрова",
}

var defaultCities = []string{
	"new york", "los angeles", "chicago", "houston", "phoenix", "philadelphia", "san antonio", "san diego",
	"dallas", "san jose", "austin", "jacksonville", "fort worth", "columbus", "indianapolis", "charlotte",
	"san francisco", "seattle", "denver", "oklahoma city", "nashville", "el paso", "washington", "boston",
	"las vegas", "portland", "detroit", "louisville", "memphis", "baltimore", "milwaukee", "albuquerque",
	"tucson", "fresno", "sacramento", "kansas city", "mesa", "atlanta", "omaha", "colorado springs",
	"raleigh", "miami", "long beach", "virginia beach", "oakland", "minneapolis", "tulsa", "tampa",
	"arlington", "new orleans", "cleveland", "pittsburgh", "cincinnati", "st. louis", "saint louis",
	"orlando", "salt lake city", "buffalo", "richmond", "springfield", "madison", "toledo", "newark",
	"toronto", "montreal", "vancouver", "calgary", "ottawa", "london", "manchester", "paris", "berlin",
	"sydney", "melbourne", "moscow", "москва", "санкт-петербург", "новосибирск", "екатеринбург", "казань",
	"нижний новгород", "самара", "омск", "киев", "минск",
}
