package engine_test

import (
	"errors"
	"testing"

	"github.com/ecliptiq/transits/internal/domain/engine"
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewEngine(t *testing.T) {
	Convey("Given engine construction", t, func() {
		Convey("Then valid sects build an engine", func() {
			e, err := engine.New("diurnal")
			So(err, ShouldBeNil)
			So(e.Sect(), ShouldEqual, model.SectDiurnal)

			e, err = engine.New(" Nocturnal ")
			So(err, ShouldBeNil)
			So(e.Sect(), ShouldEqual, model.SectNocturnal)
		})

		Convey("Then an unrecognized sect fails fast", func() {
			_, err := engine.New("evening")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrInvalidSect), ShouldBeTrue)
		})

		Convey("Then the tolerance defaults from the table", func() {
			e, err := engine.New("diurnal")
			So(err, ShouldBeNil)
			So(e.MinuteTolArcmin(), ShouldEqual, 1.59)
		})

		Convey("Then the tolerance can be overridden", func() {
			e, err := engine.New("diurnal", engine.WithMinuteTolerance(3.0))
			So(err, ShouldBeNil)
			So(e.MinuteTolArcmin(), ShouldEqual, 3.0)
		})
	})
}

func TestExactSquareToAscendant(t *testing.T) {
	Convey("Given transiting Sun at 10.0 moving 1.0 deg/day and natal Ascendant at 100.0", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		transits := model.PositionSet{rules.Sun: model.Moving(10.0, 1.0)}
		natal := model.PositionSet{rules.Ascendant: model.Fixed(100.0)}

		hits := e.RunQualifying(transits, natal)

		Convey("Then exactly the square qualifies", func() {
			So(len(hits), ShouldEqual, 1)
			h := hits[0]
			So(h.TransitBody, ShouldEqual, rules.Sun)
			So(h.NatalPoint, ShouldEqual, rules.Ascendant)
			So(h.AspectName, ShouldEqual, "square")
			So(h.AspectAngle, ShouldEqual, 90.0)
			So(h.ErrorDeg, ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("Then the forward projection makes it separating", func() {
			// Projected longitude 10.1: |dist(10.1,100)-90| = 0.1 > 0 now.
			So(hits[0].Motion, ShouldEqual, model.MotionSeparating)
		})

		Convey("Then the separating orb was used and the hit is within orb", func() {
			h := hits[0]
			So(h.OrbUsed, ShouldNotBeNil)
			So(*h.OrbUsed, ShouldEqual, 1.0)
			So(h.WithinOrb, ShouldNotBeNil)
			So(*h.WithinOrb, ShouldBeTrue)
			So(h.Qualifies, ShouldBeTrue)
			So(h.MinuteExactRequired, ShouldBeFalse)
			So(h.MinuteExactPassed, ShouldBeTrue)
			So(h.Notes, ShouldEqual, "within orb")
		})
	})
}

func TestApplyingDetermination(t *testing.T) {
	Convey("Given a transiting Sun closing on a square", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		// Sun at 9.5 moving forward: separation 90.5, error +0.5 and
		// shrinking, hence applying with the wider 2.0 orb.
		transits := model.PositionSet{rules.Sun: model.Moving(9.5, 1.0)}
		natal := model.PositionSet{rules.Ascendant: model.Fixed(100.0)}

		hits := e.RunQualifying(transits, natal)

		Convey("Then the hit is applying under the applying orb", func() {
			So(len(hits), ShouldEqual, 1)
			So(hits[0].Motion, ShouldEqual, model.MotionApplying)
			So(*hits[0].OrbUsed, ShouldEqual, 2.0)
		})
	})

	Convey("Given a transiting Sun with no speed data", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		natal := model.PositionSet{rules.Ascendant: model.Fixed(100.0)}

		Convey("When the error fits only the wider applying orb", func() {
			// Error 1.2: inside applying orb 2.0, outside separating orb
			// 1.0. Unknown motion must use the tighter orb and reject.
			transits := model.PositionSet{rules.Sun: model.Fixed(11.2)}
			hits := e.RunQualifying(transits, natal)

			Convey("Then the conservative tighter orb rejects the hit", func() {
				So(len(hits), ShouldEqual, 0)
			})
		})

		Convey("When the error fits the tighter orb", func() {
			transits := model.PositionSet{rules.Sun: model.Fixed(10.8)}
			hits := e.RunQualifying(transits, natal)

			Convey("Then the hit qualifies with unknown motion", func() {
				So(len(hits), ShouldEqual, 1)
				So(hits[0].Motion, ShouldEqual, model.MotionUnknown)
				So(*hits[0].OrbUsed, ShouldEqual, 1.0)
			})
		})
	})
}

func TestMinuteExactRegime(t *testing.T) {
	Convey("Given a minute-exact transiting Saturn", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		natal := model.PositionSet{rules.Sun: model.Fixed(100.0)}

		Convey("When the error is exactly the 1.59 arcmin tolerance", func() {
			// 1.59 arcmin = 0.0265 degrees; boundary must qualify.
			transits := model.PositionSet{rules.Saturn: model.Moving(10.0265, 0.03)}
			hits := e.RunQualifying(transits, natal)

			Convey("Then the boundary qualifies", func() {
				So(len(hits), ShouldEqual, 1)
				So(hits[0].MinuteExactRequired, ShouldBeTrue)
				So(hits[0].MinuteExactPassed, ShouldBeTrue)
				So(hits[0].Notes, ShouldEqual, "minute-exact transit")
			})

			Convey("Then motion stays unknown and no orb is recorded, even with speed data", func() {
				So(hits[0].Motion, ShouldEqual, model.MotionUnknown)
				So(hits[0].OrbUsed, ShouldBeNil)
				So(hits[0].WithinOrb, ShouldBeNil)
			})
		})

		Convey("When the error is just past the tolerance", func() {
			transits := model.PositionSet{rules.Saturn: model.Fixed(10.0266)}
			hits := e.RunQualifying(transits, natal)

			Convey("Then nothing qualifies", func() {
				So(len(hits), ShouldEqual, 0)
			})

			Convey("And the all view retains it as non-qualifying", func() {
				all := e.RunAll(transits, natal)
				found := false
				for _, h := range all {
					if h.AspectName == "square" {
						found = true
						So(h.Qualifies, ShouldBeFalse)
						So(h.MinuteExactPassed, ShouldBeFalse)
						So(h.Notes, ShouldEqual, "minute-exact required (did not pass)")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestSilentNonErrors(t *testing.T) {
	Convey("Given position sets with inert entries", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		natal := model.PositionSet{rules.Sun: model.Fixed(100.0)}

		Convey("Then unknown transiting keys are ignored without error", func() {
			transits := model.PositionSet{"Vesta": model.Fixed(10.0)}
			So(func() { e.RunQualifying(transits, natal) }, ShouldNotPanic)
			So(len(e.RunQualifying(transits, natal)), ShouldEqual, 0)
		})

		Convey("Then the excluded Moon produces no hits", func() {
			transits := model.PositionSet{rules.Moon: model.Moving(10.0, 13.2)}
			So(len(e.RunAll(transits, natal)), ShouldEqual, 0)
		})

		Convey("Then a body with neither orbs nor minute-exactness yields nothing, even in the all view", func() {
			table := rules.New(rules.WithoutOrbs(rules.Venus))
			e2, err := engine.New("nocturnal", engine.WithTable(table))
			So(err, ShouldBeNil)

			transits := model.PositionSet{rules.Venus: model.Moving(10.0, 1.2)}
			So(len(e2.RunAll(transits, natal)), ShouldEqual, 0)
		})

		Convey("Then unknown natal keys are ignored", func() {
			transits := model.PositionSet{rules.Sun: model.Moving(10.0, 1.0)}
			odd := model.PositionSet{"Regulus": model.Fixed(100.0)}
			So(len(e.RunAll(transits, odd)), ShouldEqual, 0)
		})
	})
}

func TestOuterNatalRestriction(t *testing.T) {
	Convey("Given outer-to-outer geometry that is perfectly exact", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		transits := model.PositionSet{rules.Saturn: model.Fixed(50.0)}
		natal := model.PositionSet{rules.Saturn: model.Fixed(50.0)}

		Convey("Then transiting Saturn never reaches natal Saturn", func() {
			So(len(e.RunAll(transits, natal)), ShouldEqual, 0)
		})
	})

	Convey("Given a whitelisted transit to an outer natal point", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		transits := model.PositionSet{rules.Mars: model.Moving(50.0, 0.6)}
		natal := model.PositionSet{rules.Saturn: model.Fixed(50.0)}

		Convey("Then transiting Mars reaches natal Saturn", func() {
			hits := e.RunQualifying(transits, natal)
			So(len(hits), ShouldEqual, 1)
			So(hits[0].AspectName, ShouldEqual, "conjunction")
		})
	})
}

func TestMarsDominance(t *testing.T) {
	// Mars at 358.5 applying to a conjunction with natal Sun; Venus at
	// 0.5 separating from the same conjunction. Both qualify on geometry.
	transits := model.PositionSet{
		rules.Mars:  model.Moving(358.5, 1.0),
		rules.Venus: model.Moving(0.5, 1.0),
	}
	natal := model.PositionSet{rules.Sun: model.Fixed(0.0)}

	Convey("Given Mars and Venus both hitting natal Sun", t, func() {
		Convey("When the chart is diurnal", func() {
			e, err := engine.New("diurnal")
			So(err, ShouldBeNil)

			hits := e.RunQualifying(transits, natal)

			Convey("Then only the Mars hit survives", func() {
				So(len(hits), ShouldEqual, 1)
				So(hits[0].TransitBody, ShouldEqual, rules.Mars)
			})

			Convey("And the all view still shows both (no dominance there)", func() {
				all := e.RunAll(transits, natal)
				bodies := map[string]bool{}
				for _, h := range all {
					if h.Qualifies {
						bodies[h.TransitBody] = true
					}
				}
				So(bodies[rules.Mars], ShouldBeTrue)
				So(bodies[rules.Venus], ShouldBeTrue)
			})
		})

		Convey("When the chart is nocturnal with identical geometry", func() {
			e, err := engine.New("nocturnal")
			So(err, ShouldBeNil)

			hits := e.RunQualifying(transits, natal)

			Convey("Then both hits are kept", func() {
				bodies := map[string]bool{}
				for _, h := range hits {
					bodies[h.TransitBody] = true
				}
				So(len(hits), ShouldEqual, 2)
				So(bodies[rules.Mars], ShouldBeTrue)
				So(bodies[rules.Venus], ShouldBeTrue)
			})
		})

		Convey("When dominance is disabled in the table", func() {
			table := rules.New(rules.WithMarsDominance(false))
			e, err := engine.New("diurnal", engine.WithTable(table))
			So(err, ShouldBeNil)

			Convey("Then both hits are kept even in a diurnal chart", func() {
				So(len(e.RunQualifying(transits, natal)), ShouldEqual, 2)
			})
		})
	})

	Convey("Given Mars hitting one point while another point is hit by Venus only", t, func() {
		e, err := engine.New("diurnal")
		So(err, ShouldBeNil)

		spread := model.PositionSet{
			rules.Mars:  model.Moving(358.5, 1.0), // conjunct natal Sun
			rules.Venus: model.Moving(200.5, 1.0), // conjunct natal Moon
		}
		twoPoints := model.PositionSet{
			rules.Sun:  model.Fixed(0.0),
			rules.Moon: model.Fixed(200.0),
		}

		hits := e.RunQualifying(spread, twoPoints)

		Convey("Then Venus survives on the undominated point", func() {
			bodies := map[string]string{}
			for _, h := range hits {
				bodies[h.TransitBody] = h.NatalPoint
			}
			So(bodies[rules.Mars], ShouldEqual, rules.Sun)
			So(bodies[rules.Venus], ShouldEqual, rules.Moon)
		})
	})
}

func TestRanking(t *testing.T) {
	Convey("Given an applying hit with a larger error and a separating hit with a smaller one", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		// Sun at 90.3 retrograding toward the square: applying, error 0.3.
		// Venus at 90.1 moving forward: separating, error 0.1.
		transits := model.PositionSet{
			rules.Sun:   model.Moving(90.3, -1.0),
			rules.Venus: model.Moving(90.1, 1.0),
		}
		natal := model.PositionSet{rules.Moon: model.Fixed(0.0)}

		hits := e.RunQualifying(transits, natal)

		Convey("Then the applying hit ranks first despite the larger error", func() {
			So(len(hits), ShouldEqual, 2)
			So(hits[0].TransitBody, ShouldEqual, rules.Sun)
			So(hits[0].Motion, ShouldEqual, model.MotionApplying)
			So(hits[1].TransitBody, ShouldEqual, rules.Venus)
			So(hits[1].Motion, ShouldEqual, model.MotionSeparating)
		})
	})

	Convey("Given orb-regime and minute-exact hits together", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		// Saturn exactly conjunct: minute-exact, error 0. Sun separating
		// from a square with error 0.5. The orb hit must still rank first.
		transits := model.PositionSet{
			rules.Saturn: model.Fixed(200.0),
			rules.Sun:    model.Moving(90.5, 1.0),
		}
		natal := model.PositionSet{
			rules.Moon:    model.Fixed(0.0),
			rules.Mercury: model.Fixed(200.0),
		}

		hits := e.RunQualifying(transits, natal)

		Convey("Then the orb-regime bucket precedes the minute-exact bucket", func() {
			So(len(hits), ShouldEqual, 2)
			So(hits[0].TransitBody, ShouldEqual, rules.Sun)
			So(hits[1].TransitBody, ShouldEqual, rules.Saturn)
		})
	})

	Convey("Given equal-tightness minute-exact hits", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		transits := model.PositionSet{
			rules.Uranus: model.Fixed(40.0),
			rules.Saturn: model.Fixed(300.0),
		}
		natal := model.PositionSet{
			rules.Sun:  model.Fixed(40.0),
			rules.Moon: model.Fixed(300.0),
		}

		hits := e.RunQualifying(transits, natal)

		Convey("Then the transiting body name breaks the tie deterministically", func() {
			So(len(hits), ShouldEqual, 2)
			So(hits[0].TransitBody, ShouldEqual, rules.Saturn)
			So(hits[1].TransitBody, ShouldEqual, rules.Uranus)
		})
	})

	Convey("Given one pair equidistant between square and trine", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		// Separation 105: square error +15, trine error -15. Neither
		// qualifies; the all view must order square before trine by angle.
		transits := model.PositionSet{rules.Sun: model.Fixed(105.0)}
		natal := model.PositionSet{rules.Moon: model.Fixed(0.0)}

		all := e.RunAll(transits, natal)

		var names []string
		for _, h := range all {
			if h.AbsError() == 15.0 {
				names = append(names, h.AspectName)
			}
		}

		Convey("Then the aspect angle is the final tie-break", func() {
			So(names, ShouldResemble, []string{"square", "trine"})
		})
	})
}

func TestRunAllRetainsEverything(t *testing.T) {
	Convey("Given a transiting Sun against one natal point", t, func() {
		e, err := engine.New("nocturnal")
		So(err, ShouldBeNil)

		transits := model.PositionSet{rules.Sun: model.Moving(10.0, 1.0)}
		natal := model.PositionSet{rules.Ascendant: model.Fixed(100.0)}

		all := e.RunAll(transits, natal)

		Convey("Then every aspect produced a hit", func() {
			So(len(all), ShouldEqual, 6)
		})

		Convey("Then exactly one of them qualifies", func() {
			qualifying := 0
			for _, h := range all {
				if h.Qualifies {
					qualifying++
				}
			}
			So(qualifying, ShouldEqual, 1)
		})

		Convey("Then non-qualifying hits carry the outside-orb note", func() {
			for _, h := range all {
				if !h.Qualifies {
					So(h.Notes, ShouldEqual, "outside orb")
					So(*h.WithinOrb, ShouldBeFalse)
				}
			}
		})
	})
}
