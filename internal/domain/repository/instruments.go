package repository

import "EventWeights/internal/domain/models"

// DefaultInstruments mirrors the rate tables the loaders maintain.
func DefaultInstruments() []models.Instrument {
	return []models.Instrument{
		{ID: 1, Name: "EURUSD", Table: "brain_rates_eur_usd", Scale: 0.001},
		{ID: 3, Name: "BTCUSD", Table: "brain_rates_btc_usd", Scale: 1000.0},
		{ID: 4, Name: "ETHUSD", Table: "brain_rates_eth_usd", Scale: 100.0},
	}
}

// DefaultInstrumentID is used when a request names an unknown pair.
const DefaultInstrumentID = 1

// Instruments resolves pair ids with a fallback to the default instrument.
type Instruments struct {
	byID map[int]models.Instrument
	list []models.Instrument
	def  models.Instrument
}

// NewInstruments indexes the list; the default is DefaultInstrumentID or the first entry.
func NewInstruments(list []models.Instrument) *Instruments {
	if len(list) == 0 {
		list = DefaultInstruments()
	}
	in := &Instruments{byID: make(map[int]models.Instrument, len(list)), list: list, def: list[0]}
	for _, i := range list {
		in.byID[i.ID] = i
		if i.ID == DefaultInstrumentID {
			in.def = i
		}
	}
	return in
}

// Normalize returns the instrument for id, or the default one.
func (in *Instruments) Normalize(id int) models.Instrument {
	if i, ok := in.byID[id]; ok {
		return i
	}
	return in.def
}

// Lookup reports whether id is a configured instrument.
func (in *Instruments) Lookup(id int) (models.Instrument, bool) {
	i, ok := in.byID[id]
	return i, ok
}

// All returns instruments in configuration order.
func (in *Instruments) All() []models.Instrument { return in.list }

// Scale returns the trend-alignment scale factor; unknown instruments use 1.0.
func (in *Instruments) Scale(id int) float64 {
	if i, ok := in.byID[id]; ok && i.Scale != 0 {
		return i.Scale
	}
	return 1.0
}
