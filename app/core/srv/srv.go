package srv

type Srv struct {
	ai     AIDriver
	search Searcher
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (s *Srv) AI() AIDriver {
	return s.ai
}

func (s *Srv) Search() Searcher {
	return s.search
}
