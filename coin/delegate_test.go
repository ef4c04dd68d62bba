package coin

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDelegateOpensToSameSerial(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coinObj, _, err := Construct(p, addr, Standard, 99, "m", nil)
	c.Assert(err, qt.IsNil)

	rec, err := Recover(p, sk.FullViewKey(), coinObj, 0)
	c.Assert(err, qt.IsNil)

	del := Delegate(p, sk.FullViewKey(), rec, []byte("delegate-id-1"))
	c.Assert(string(del.ID), qt.Equals, "delegate-id-1")

	opened := coinObj.S.Sub(del.S1)
	c.Assert(opened.Equal(p.H.ScalarMult(del.S1Prime)), qt.IsTrue)
}

func TestDelegateSamplesIDWhenNil(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coinObj, _, err := Construct(p, addr, Standard, 7, "m", nil)
	c.Assert(err, qt.IsNil)

	rec, err := Recover(p, sk.FullViewKey(), coinObj, 0)
	c.Assert(err, qt.IsNil)

	del := Delegate(p, sk.FullViewKey(), rec, nil)
	c.Assert(len(del.ID), qt.Equals, 16)
}

func TestDelegateDistinctIDsDiverge(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coinObj, _, err := Construct(p, addr, Standard, 7, "m", nil)
	c.Assert(err, qt.IsNil)

	rec, err := Recover(p, sk.FullViewKey(), coinObj, 0)
	c.Assert(err, qt.IsNil)

	delA := Delegate(p, sk.FullViewKey(), rec, []byte("a"))
	delB := Delegate(p, sk.FullViewKey(), rec, []byte("b"))
	c.Assert(delA.S1.Equal(delB.S1), qt.IsFalse)
}
