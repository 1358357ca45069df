package bus

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Opener creates a Link from a parsed URL.
type Opener func(u *url.URL) (Link, error)

var (
	openers     = make(map[string]Opener)
	openersLock sync.RWMutex
)

// Register makes an Opener available for a URL scheme.
// It is usually called from init of the package providing the Link.
func Register(scheme string, opener Opener) {
	openersLock.Lock()
	defer openersLock.Unlock()
	if _, exist := openers[scheme]; exist {
		panic("bus: scheme registered twice: " + scheme)
	}
	openers[scheme] = opener
}

// Schemes lists registered URL schemes.
func Schemes() []string {
	openersLock.RLock()
	defer openersLock.RUnlock()
	schemes := make([]string, 0, len(openers))
	for scheme := range openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Open opens a Link by URL, e.g. tcp://host:port, mqtt://host:port/prefix/name.
func Open(linkURL string) (Link, error) {
	u, err := url.Parse(linkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bus URL: %v", err)
	}
	openersLock.RLock()
	opener := openers[u.Scheme]
	openersLock.RUnlock()
	if opener == nil {
		return nil, fmt.Errorf("unknown bus URL scheme: %q", u.Scheme)
	}
	return opener(u)
}
