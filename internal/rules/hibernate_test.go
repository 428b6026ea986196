package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stringsReplaceOnce(text, old, new string) string {
	return strings.Replace(text, old, new, 1)
}

const hibernateOriginal = `package com.example.model;

import javax.persistence.Entity;
import javax.persistence.Id;
import org.hibernate.annotations.Type;
import org.hibernate.annotations.TypeDef;

@Entity
@TypeDef(name = "json", typeClass = JsonType.class)
public class Customer {

    @Id
    private Long id;

    @Type(type = "json")
    private String attributes;

    private String name;
}
`

const hibernateMigrated = `package com.example.model;

import jakarta.persistence.Entity;
import jakarta.persistence.Id;
import org.hibernate.annotations.JdbcTypeCode;
import org.hibernate.type.SqlTypes;

@Entity
public class Customer {

    @Id
    private Long id;

    @JdbcTypeCode(SqlTypes.JSON)
    private String attributes;

    private String name;
}
`

func TestHibernateRules(t *testing.T) {
	t.Run("accepts a faithful migration", func(t *testing.T) {
		violated := Evaluate(HibernateRules(), hibernateOriginal, hibernateMigrated)
		assert.Empty(t, violated)
	})

	t.Run("rejects the unmigrated original", func(t *testing.T) {
		violated := Evaluate(HibernateRules(), hibernateOriginal, hibernateOriginal)
		assert.Contains(t, violated, "typedef_removed")
		assert.Contains(t, violated, "type_annotation_migrated")
		assert.Contains(t, violated, "jakarta_persistence")
		assert.Contains(t, violated, "json_type_converted")
	})

	t.Run("rejects a lost entity annotation", func(t *testing.T) {
		broken := stringsReplaceOnce(hibernateMigrated, "@Entity\n", "")
		violated := Evaluate(HibernateRules(), hibernateOriginal, broken)
		assert.Contains(t, violated, "entity_preserved")
	})

	t.Run("rejects a dropped field", func(t *testing.T) {
		broken := stringsReplaceOnce(hibernateMigrated, "    private String name;\n", "")
		violated := Evaluate(HibernateRules(), hibernateOriginal, broken)
		assert.Contains(t, violated, "fields_preserved")
	})

	t.Run("preserving all fields in rewritten form passes the preservation rule", func(t *testing.T) {
		// Field annotations change, field names survive.
		violated := Evaluate(HibernateRules(), hibernateOriginal, hibernateMigrated)
		assert.NotContains(t, violated, "fields_preserved")
	})

	t.Run("rejects a surviving deprecated dialect", func(t *testing.T) {
		original := `public class Cfg { static final String D = "org.hibernate.dialect.MySQL5InnoDBDialect"; }`
		violated := Evaluate(HibernateRules(), original, original)
		assert.Contains(t, violated, "dialects_updated")

		migrated := `public class Cfg { static final String D = "org.hibernate.dialect.MySQLDialect"; }`
		assert.NotContains(t, Evaluate(HibernateRules(), original, migrated), "dialects_updated")
	})
}
