package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const securityOriginal = `package com.example.security;

import org.springframework.context.annotation.Configuration;
import org.springframework.security.config.annotation.web.builders.HttpSecurity;
import org.springframework.security.config.annotation.web.configuration.EnableWebSecurity;
import org.springframework.security.config.annotation.web.configuration.WebSecurityConfigurerAdapter;

@Configuration
@EnableWebSecurity
public class SecurityConfig extends WebSecurityConfigurerAdapter {

    @Override
    protected void configure(HttpSecurity http) throws Exception {
        http
            .authorizeRequests()
                .antMatchers("/public/**").permitAll()
                .antMatchers("/internal/**").denyAll()
                .antMatchers("/admin/**").hasRole("ADMIN")
                .anyRequest().authenticated()
                .and()
            .formLogin()
                .loginPage("/login").permitAll()
                .and()
            .logout().permitAll();
    }
}
`

const securityMigrated = `package com.example.security;

import org.springframework.context.annotation.Bean;
import org.springframework.context.annotation.Configuration;
import org.springframework.security.config.annotation.web.builders.HttpSecurity;
import org.springframework.security.config.annotation.web.configuration.EnableWebSecurity;
import org.springframework.security.web.SecurityFilterChain;

@Configuration
@EnableWebSecurity
public class SecurityConfig {

    @Bean
    public SecurityFilterChain filterChain(HttpSecurity http) throws Exception {
        http
            .authorizeHttpRequests(auth -> auth
                .requestMatchers("/public/**").permitAll()
                .requestMatchers("/internal/**").denyAll()
                .requestMatchers("/admin/**").hasRole("ADMIN")
                .anyRequest().authenticated())
            .formLogin(form -> form.loginPage("/login").permitAll())
            .logout(logout -> logout.permitAll());
        return http.build();
    }
}
`

func TestSecurityRules(t *testing.T) {
	t.Run("accepts a faithful migration", func(t *testing.T) {
		violated := Evaluate(SecurityRules(), securityOriginal, securityMigrated)
		assert.Empty(t, violated)
	})

	t.Run("rejects a dropped deny rule by name", func(t *testing.T) {
		// Same candidate, but the deny rule was silently weakened.
		broken := securityMigrated
		broken = replaceOnce(t, broken,
			`.requestMatchers("/internal/**").denyAll()`,
			`.requestMatchers("/internal/**").permitAll()`)

		violated := Evaluate(SecurityRules(), securityOriginal, broken)
		assert.Contains(t, violated, "preserves_all_authorization_rules")
	})

	t.Run("rejects a dropped url pattern", func(t *testing.T) {
		broken := replaceOnce(t, securityMigrated,
			`.requestMatchers("/admin/**").hasRole("ADMIN")`, "")

		violated := Evaluate(SecurityRules(), securityOriginal, broken)
		assert.Contains(t, violated, "preserves_url_patterns")
		assert.Contains(t, violated, "preserves_all_authorization_rules")
	})

	t.Run("rejects the unconverted adapter class", func(t *testing.T) {
		violated := Evaluate(SecurityRules(), securityOriginal, securityOriginal)
		assert.Contains(t, violated, "no_websecurityconfigureradapter")
		assert.Contains(t, violated, "ant_matchers_converted")
		assert.Contains(t, violated, "security_filter_chain_bean")
		assert.Contains(t, violated, "returns_http_build")
		assert.Contains(t, violated, "no_and_chaining")
	})

	t.Run("rejects a missing filter chain bean by name", func(t *testing.T) {
		broken := replaceOnce(t, securityMigrated, "return http.build();", "return null;")
		violated := Evaluate(SecurityRules(), securityOriginal, broken)
		assert.Equal(t, []string{"returns_http_build"}, violated)
	})

	t.Run("rejects lingering and chaining", func(t *testing.T) {
		broken := replaceOnce(t, securityMigrated,
			".logout(logout -> logout.permitAll());",
			".logout(logout -> logout.permitAll()).and();")
		violated := Evaluate(SecurityRules(), securityOriginal, broken)
		assert.Equal(t, []string{"no_and_chaining"}, violated)
	})

	t.Run("rejects a dropped security feature", func(t *testing.T) {
		broken := replaceOnce(t, securityMigrated,
			".formLogin(form -> form.loginPage(\"/login\").permitAll())", "")
		violated := Evaluate(SecurityRules(), securityOriginal, broken)
		assert.Contains(t, violated, "preserves_security_features")
	})

	t.Run("reports every violated rule in one pass", func(t *testing.T) {
		violated := Evaluate(SecurityRules(), securityOriginal, "public class Empty {}")
		assert.GreaterOrEqual(t, len(violated), 4)
	})
}

func replaceOnce(t *testing.T, text, old, new string) string {
	t.Helper()
	require.Contains(t, text, old)
	return stringsReplaceOnce(text, old, new)
}
