package sink

import "unicode/utf8"

type Middleware func(Sink) Sink

// Chain wraps s so that the first middleware is the outermost.
func Chain(s Sink, mws ...Middleware) Sink {
	for i := len(mws) - 1; i >= 0; i-- {
		s = mws[i](s)
	}
	return s
}

// MaxLine cuts lines longer than maxBytes, keeping the cut on a rune
// boundary. maxBytes <= 0 disables the limit.
func MaxLine(maxBytes int) Middleware {
	return func(next Sink) Sink {
		if maxBytes <= 0 {
			return next
		}
		return Func(func(line string) error {
			if len(line) > maxBytes {
				cut := maxBytes
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				line = line[:cut]
			}
			return next.WriteLine(line)
		})
	}
}
