package anki

import (
	"strings"
	"time"

	"github.com/askeladd/deckforge/internal/models"
)

// The col row carries four JSON blobs (conf, models, decks, dconf) whose
// key names come from the collection format. The structs below mirror the
// schema-11 layout; values not meaningful for a freshly exported package
// are the defaults Anki writes for a new collection.

type colConf struct {
	ActiveDecks   []int64 `json:"activeDecks"`
	AddToCur      bool    `json:"addToCur"`
	CollapseTime  int     `json:"collapseTime"`
	CurDeck       int64   `json:"curDeck"`
	CurModel      int64   `json:"curModel,string"`
	DueCounts     bool    `json:"dueCounts"`
	EstTimes      bool    `json:"estTimes"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	NextPos       int     `json:"nextPos"`
	SortBackwards bool    `json:"sortBackwards"`
	SortType      string  `json:"sortType"`
	TimeLim       int     `json:"timeLim"`
}

type colField struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
	Media  []any  `json:"media"`
}

type colTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
	Did   *int64 `json:"did"`
}

type colModel struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Type      int           `json:"type"`
	Mod       int64         `json:"mod"`
	Usn       int           `json:"usn"`
	SortF     int           `json:"sortf"`
	Did       int64         `json:"did"`
	Flds      []colField    `json:"flds"`
	Tmpls     []colTemplate `json:"tmpls"`
	CSS       string        `json:"css"`
	LatexPre  string        `json:"latexPre"`
	LatexPost string        `json:"latexPost"`
	Req       [][3]any      `json:"req"`
	Tags      []string      `json:"tags"`
	Vers      []any         `json:"vers"`
}

type colDeck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Mod              int64  `json:"mod"`
	Usn              int    `json:"usn"`
	Conf             int    `json:"conf"`
	Dyn              int    `json:"dyn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
}

type colDeckConfNew struct {
	Bury          bool  `json:"bury"`
	Delays        []int `json:"delays"`
	InitialFactor int   `json:"initialFactor"`
	Ints          []int `json:"ints"`
	Order         int   `json:"order"`
	PerDay        int   `json:"perDay"`
	Separate      bool  `json:"separate"`
}

type colDeckConfRev struct {
	Bury     bool    `json:"bury"`
	Ease4    float64 `json:"ease4"`
	Fuzz     float64 `json:"fuzz"`
	IvlFct   float64 `json:"ivlFct"`
	MaxIvl   int     `json:"maxIvl"`
	MinSpace int     `json:"minSpace"`
	PerDay   int     `json:"perDay"`
}

type colDeckConfLapse struct {
	Delays      []int   `json:"delays"`
	LeechAction int     `json:"leechAction"`
	LeechFails  int     `json:"leechFails"`
	MinInt      int     `json:"minInt"`
	Mult        float64 `json:"mult"`
}

type colDeckConf struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Mod      int64            `json:"mod"`
	Usn      int              `json:"usn"`
	Autoplay bool             `json:"autoplay"`
	ReplayQ  bool             `json:"replayq"`
	Timer    int              `json:"timer"`
	MaxTaken int              `json:"maxTaken"`
	New      colDeckConfNew   `json:"new"`
	Rev      colDeckConfRev   `json:"rev"`
	Lapse    colDeckConfLapse `json:"lapse"`
}

const defaultLatexPre = `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}
`

const defaultLatexPost = `\end{document}`

func newColConf(modelID int64) colConf {
	return colConf{
		ActiveDecks:  []int64{1},
		AddToCur:     true,
		CollapseTime: 1200,
		CurDeck:      1,
		CurModel:     modelID,
		DueCounts:    true,
		EstTimes:     true,
		NewBury:      true,
		NextPos:      1,
		SortType:     "noteFld",
	}
}

func newColModel(id int64, m models.Model, mod time.Time) colModel {
	flds := make([]colField, len(m.Fields))
	for i, name := range m.Fields {
		flds[i] = colField{
			Name:  name,
			Ord:   i,
			Font:  "Arial",
			Size:  20,
			Media: []any{},
		}
	}
	tmpls := make([]colTemplate, len(m.Templates))
	for i, t := range m.Templates {
		tmpls[i] = colTemplate{
			Name: t.Name,
			Ord:  i,
			Qfmt: t.Qfmt,
			Afmt: t.Afmt,
		}
	}
	return colModel{
		ID:        id,
		Name:      m.Name,
		Mod:       mod.Unix(),
		Usn:       -1,
		Did:       1,
		Flds:      flds,
		Tmpls:     tmpls,
		CSS:       m.CSS,
		LatexPre:  defaultLatexPre,
		LatexPost: defaultLatexPost,
		Req:       computeReq(m.Fields, m.Templates),
		Tags:      []string{},
		Vers:      []any{},
	}
}

// computeReq builds the model's card-generation requirements: for each
// template, which field ordinals must be non-empty for the card to exist.
// A question format referencing exactly one field requires that field
// ("all"); otherwise any referenced field suffices ("any"). Placeholders
// naming unknown fields are ignored here and stay literal in the output.
func computeReq(fields []string, tmpls []models.CardTemplate) [][3]any {
	req := make([][3]any, 0, len(tmpls))
	for ord, t := range tmpls {
		referenced := []int{}
		for i, name := range fields {
			if strings.Contains(t.Qfmt, "{{"+name+"}}") {
				referenced = append(referenced, i)
			}
		}
		kind := "any"
		if len(referenced) == 1 {
			kind = "all"
		}
		req = append(req, [3]any{ord, kind, referenced})
	}
	return req
}

func newColDeck(id int64, name, desc string, mod time.Time) colDeck {
	return colDeck{
		ID:        id,
		Name:      name,
		Desc:      desc,
		Mod:       mod.Unix(),
		Usn:       -1,
		Conf:      1,
		ExtendNew: 10,
		ExtendRev: 50,
	}
}

// newDefaultDeck is deck 1, which every collection must contain.
func newDefaultDeck(mod time.Time) colDeck {
	d := newColDeck(1, "Default", "", mod)
	d.Usn = 0
	return d
}

func newDefaultDeckConf(mod time.Time) colDeckConf {
	return colDeckConf{
		ID:       1,
		Name:     "Default",
		Mod:      mod.Unix(),
		Autoplay: true,
		ReplayQ:  true,
		MaxTaken: 60,
		New: colDeckConfNew{
			Bury:          true,
			Delays:        []int{1, 10},
			InitialFactor: 2500,
			Ints:          []int{1, 4, 7},
			Order:         1,
			PerDay:        20,
			Separate:      true,
		},
		Rev: colDeckConfRev{
			Bury:     true,
			Ease4:    1.3,
			Fuzz:     0.05,
			IvlFct:   1,
			MaxIvl:   36500,
			MinSpace: 1,
			PerDay:   100,
		},
		Lapse: colDeckConfLapse{
			Delays:     []int{10},
			LeechFails: 8,
			MinInt:     1,
		},
	}
}
